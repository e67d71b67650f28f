package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

var secretVars = []string{
	"EQUITYSCOPE_LLM_OPENROUTER_KEY", "OPENROUTER_API_KEY",
	"EQUITYSCOPE_LLM_OPENAI_KEY", "OPENAI_API_KEY",
	"EQUITYSCOPE_LLM_ANTHROPIC_KEY", "ANTHROPIC_API_KEY",
	"EQUITYSCOPE_LLM_GEMINI_KEY", "GEMINI_API_KEY",
	"EQUITYSCOPE_MARKET_FMP_KEY", "FMP_API_KEY",
}

// isolate points HOME at an empty dir and clears every key variable.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, e := range secretVars {
		t.Setenv(e, "")
	}
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// LLM defaults
	if cfg.LLM.Provider != "openrouter" {
		t.Errorf("LLM.Provider: got %q, want %q", cfg.LLM.Provider, "openrouter")
	}
	if cfg.LLM.Model != "google/gemini-2.5-flash" {
		t.Errorf("LLM.Model: got %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("LLM.Temperature: got %f, want 0.3", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens != 4000 {
		t.Errorf("LLM.MaxTokens: got %d, want 4000", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.AppTitle != "Investment Analysis Tool" {
		t.Errorf("LLM.AppTitle: got %q", cfg.LLM.AppTitle)
	}
	if cfg.LLM.Timeout().Seconds() != 120 {
		t.Errorf("LLM.Timeout: got %v", cfg.LLM.Timeout())
	}

	// Market defaults
	if cfg.Market.Provider != "fmp" {
		t.Errorf("Market.Provider: got %q", cfg.Market.Provider)
	}
	if cfg.Market.HistoryLimit != 5 || cfg.Market.SearchLimit != 10 {
		t.Errorf("Market limits: got %d/%d, want 5/10", cfg.Market.HistoryLimit, cfg.Market.SearchLimit)
	}

	// API defaults
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging: got %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.TestingMode {
		t.Error("TestingMode should default to false")
	}
	if cfg.LLM.OpenRouterKey != "" || cfg.Market.FMPKey != "" {
		t.Error("keys should be empty without env")
	}
}

func TestDefaultMatchesLoad(t *testing.T) {
	isolate(t)

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def := Default()
	if def.LLM.Model != loaded.LLM.Model || def.API.Port != loaded.API.Port || def.News.FeedURL != loaded.News.FeedURL {
		t.Errorf("Default() and Load() disagree: %+v vs %+v", def, loaded)
	}
}

// ── Environment overrides ──

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("EQUITYSCOPE_LLM_MODEL", "anthropic/claude-sonnet-4")
	t.Setenv("EQUITYSCOPE_API_PORT", "9090")
	t.Setenv("EQUITYSCOPE_TESTING_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LLM.Model != "anthropic/claude-sonnet-4" {
		t.Errorf("LLM.Model: got %q", cfg.LLM.Model)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if !cfg.TestingMode {
		t.Error("TestingMode: want true")
	}
}

func TestSecretEnvPrefersPrefixedName(t *testing.T) {
	isolate(t)
	t.Setenv("FMP_API_KEY", "bare-fmp-key-123")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-bare-456")
	t.Setenv("EQUITYSCOPE_LLM_OPENROUTER_KEY", "sk-or-prefixed-789")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Market.FMPKey != "bare-fmp-key-123" {
		t.Errorf("FMPKey: got %q", cfg.Market.FMPKey)
	}
	if cfg.LLM.OpenRouterKey != "sk-or-prefixed-789" {
		t.Errorf("OpenRouterKey: got %q", cfg.LLM.OpenRouterKey)
	}
	if got := cfg.LLM.KeyFor("openrouter"); got != "sk-or-prefixed-789" {
		t.Errorf("KeyFor(openrouter): got %q", got)
	}
	if got := cfg.LLM.KeyFor("mock"); got != "" {
		t.Errorf("KeyFor(mock): got %q", got)
	}
}

// ── Files ──

func TestLoadFromFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  provider: anthropic
  model: claude-sonnet-4-20250514
  anthropic_key: sk-ant-from-file-000
market:
  provider: mock
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Model != "claude-sonnet-4-20250514" {
		t.Errorf("LLM: got %q/%q", cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.LLM.AnthropicKey != "sk-ant-from-file-000" {
		t.Errorf("AnthropicKey: got %q", cfg.LLM.AnthropicKey)
	}
	if cfg.Market.Provider != "mock" {
		t.Errorf("Market.Provider: got %q", cfg.Market.Provider)
	}
	// untouched sections keep their defaults
	if cfg.LLM.MaxTokens != 4000 {
		t.Errorf("LLM.MaxTokens: got %d", cfg.LLM.MaxTokens)
	}
	if ConfigFilePath() != path {
		t.Errorf("ConfigFilePath: got %q, want %q", ConfigFilePath(), path)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  provider: carrier-pigeon\napi:\n  port: 70000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"Provider", "Port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestSaveToFileOmitsSecrets(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.LLM.OpenRouterKey = "sk-or-in-memory-111"
	cfg.LLM.Model = "openai/gpt-4o"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "sk-or-in-memory-111") {
		t.Error("saved file leaks an API key")
	}

	back, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if back.LLM.Model != "openai/gpt-4o" {
		t.Errorf("reloaded model: got %q", back.LLM.Model)
	}
}

func TestSaveToFileKeepsExistingSecrets(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("market:\n  fmp_key: fmp-on-disk-222\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.API.Port = 9999
	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Market map[string]any `yaml:"market"`
		API    map[string]any `yaml:"api"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("saved file is not YAML: %v", err)
	}
	if doc.Market["fmp_key"] != "fmp-on-disk-222" {
		t.Errorf("fmp_key: got %v", doc.Market["fmp_key"])
	}
	if doc.API["port"] != 9999 {
		t.Errorf("api.port: got %v", doc.API["port"])
	}
}

// ── Keys ──

func TestCheckAPIKeys(t *testing.T) {
	isolate(t)
	t.Setenv("FMP_API_KEY", "fmp-abcdef-123456")

	cfg := Default()
	cfg.LLM.OpenRouterKey = "sk-or-configured-999"
	cfg.Market.FMPKey = "fmp-abcdef-123456"

	statuses := CheckAPIKeys(cfg)
	if len(statuses) != 5 {
		t.Fatalf("got %d statuses, want 5", len(statuses))
	}

	byName := map[string]KeyStatus{}
	for _, s := range statuses {
		byName[s.Name] = s
	}

	if s := byName["OpenRouter API Key"]; !s.IsSet || s.Source != KeySourceConfig || s.Masked != "sk-...999" {
		t.Errorf("OpenRouter: %+v", s)
	}
	if s := byName["FMP API Key"]; s.Source != KeySourceEnv {
		t.Errorf("FMP: %+v", s)
	}
	if s := byName["Gemini API Key"]; s.IsSet || s.Source != KeySourceNone || s.Masked != "" {
		t.Errorf("Gemini: %+v", s)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"short", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"sk-or-v1-abcdef", "sk-...def"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.in); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
