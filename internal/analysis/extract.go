package analysis

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var legacyCellSep = regexp.MustCompile(`[|\t]`)

// keyValue returns the rest of the first line that starts with "label:".
// The label matches case-insensitively; the value keeps its case. A leading
// dash or bullet glyph before the label is tolerated.
func keyValue(text, label string) (*string, error) {
	re, err := regexp.Compile(`(?im)^[ \t]*(?:[-•][ \t]*)?` + regexp.QuoteMeta(label) + `[ \t]*:[ \t]*(.*)$`)
	if err != nil {
		return nil, err
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	return optional(m[1]), nil
}

// legacyValue matches "label", optional colons or whitespace, then the rest of
// the line, anywhere in text.
func legacyValue(text, label string) (*string, error) {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(label) + `[:\s]*([^\n]+)`)
	if err != nil {
		return nil, err
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	return optional(m[1]), nil
}

// legacyWord finds "label" followed by one of words and returns the word
// title-cased.
func legacyWord(text, label string, words ...string) (*string, error) {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(label) + `[:\s]*(` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return nil, err
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	// Casers carry state, so one is built per call.
	v := cases.Title(language.English).String(m[1])
	return &v, nil
}

// bulletList collects the "-" or "•" lines that follow header. Blank lines,
// lines before the first bullet and "label:" lines are skipped; once a bullet
// has been seen, the first other non-blank line without a colon ends the list.
func bulletList(text, header string) ([]string, error) {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(header))
	if err != nil {
		return nil, err
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return nil, nil
	}

	var bullets []string
	for _, line := range strings.Split(text[loc[1]:], "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "-"):
			bullets = append(bullets, strings.TrimSpace(trimmed[1:]))
		case strings.HasPrefix(trimmed, "•"):
			bullets = append(bullets, strings.TrimSpace(trimmed[len("•"):]))
		case len(bullets) > 0 && !strings.Contains(trimmed, ":"):
			return bullets, nil
		}
	}
	return bullets, nil
}

// pipeTable reads every line containing "|". The first one is the header row.
// Empty cells are dropped and rows that end up empty are skipped. Rows are not
// checked against the header width.
func pipeTable(text string) Table {
	t := Table{Rows: [][]string{}}
	first := true
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || !strings.Contains(line, "|") {
			continue
		}
		cells := splitCells(strings.Split(line, "|"))
		if first {
			t.Headers = cells
			first = false
			continue
		}
		if len(cells) > 0 {
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}

// legacyTable reads pipe- or tab-separated lines with at least two cells.
// Separator rows ("---", "===") after the header are skipped.
func legacyTable(text string) Table {
	t := Table{Rows: [][]string{}}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, "|") && !strings.Contains(line, "\t") {
			continue
		}
		cells := splitCells(legacyCellSep.Split(line, -1))
		if len(cells) <= 1 {
			continue
		}
		switch {
		case len(t.Headers) == 0:
			t.Headers = cells
		case strings.Contains(line, "---"), strings.Contains(line, "==="):
		default:
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}

func splitCells(parts []string) []string {
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := strings.TrimSpace(p); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}
