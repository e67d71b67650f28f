package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// secretPaths lists the YAML keys that SaveToFile never writes from memory.
var secretPaths = map[string][]string{
	"llm":    {"openrouter_key", "openai_key", "anthropic_key", "gemini_key"},
	"market": {"fmp_key"},
}

// SaveToFile writes cfg as YAML to path. API keys held in memory are not
// written; keys already present in an existing file at path are kept.
func SaveToFile(cfg *Config, path string) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("re-read config: %w", err)
	}

	if err := keepSecrets(path, doc); err != nil {
		return err
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func keepSecrets(path string, doc map[string]any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read existing config %s: %w", path, err)
	}

	var existing map[string]any
	if err := yaml.Unmarshal(data, &existing); err != nil {
		// An unreadable file is replaced wholesale.
		return nil
	}

	for section, keys := range secretPaths {
		old, ok := existing[section].(map[string]any)
		if !ok {
			continue
		}
		cur, ok := doc[section].(map[string]any)
		if !ok {
			cur = map[string]any{}
			doc[section] = cur
		}
		for _, k := range keys {
			if v, ok := old[k]; ok {
				cur[k] = v
			}
		}
	}
	return nil
}
