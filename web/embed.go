// Package web embeds the dashboard served by the API server at /.
//
// The dashboard is plain HTML, CSS and JavaScript under static/ and needs no
// build step.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static
var static embed.FS

// Assets returns a filesystem rooted at the embedded static/ directory,
// ready for http.FileServerFS.
func Assets() (fs.FS, error) {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		return nil, fmt.Errorf("web assets: %w", err)
	}
	return sub, nil
}
