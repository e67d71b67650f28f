// Package config handles configuration loading for equityscope.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. EQUITYSCOPE_LLM_MODEL.
const EnvPrefix = "EQUITYSCOPE"

// Config represents the complete application configuration.
type Config struct {
	LLM         LLMConfig     `mapstructure:"llm"          yaml:"llm"          json:"llm"`
	Market      MarketConfig  `mapstructure:"market"       yaml:"market"       json:"market"`
	News        NewsConfig    `mapstructure:"news"         yaml:"news"         json:"news"`
	API         APIConfig     `mapstructure:"api"          yaml:"api"          json:"api"`
	Logging     LoggingConfig `mapstructure:"logging"      yaml:"logging"      json:"logging"`
	TestingMode bool          `mapstructure:"testing_mode" yaml:"testing_mode" json:"testing_mode"`
}

// LLMConfig holds completion provider configuration. Keys are never
// serialised; they come from the environment or a hand-edited config file.
type LLMConfig struct {
	Provider      string  `mapstructure:"provider"       yaml:"provider"       json:"provider"       validate:"oneof=openrouter openai anthropic gemini ollama mock"`
	OpenRouterKey string  `mapstructure:"openrouter_key" yaml:"-"              json:"-"`
	OpenAIKey     string  `mapstructure:"openai_key"     yaml:"-"              json:"-"`
	AnthropicKey  string  `mapstructure:"anthropic_key"  yaml:"-"              json:"-"`
	GeminiKey     string  `mapstructure:"gemini_key"     yaml:"-"              json:"-"`
	BaseURL       string  `mapstructure:"base_url"       yaml:"base_url"       json:"base_url"       validate:"omitempty,url"`
	OllamaURL     string  `mapstructure:"ollama_url"     yaml:"ollama_url"     json:"ollama_url"     validate:"omitempty,url"`
	Model         string  `mapstructure:"model"          yaml:"model"          json:"model"          validate:"required"`
	Temperature   float64 `mapstructure:"temperature"    yaml:"temperature"    json:"temperature"    validate:"gte=0,lte=2"`
	MaxTokens     int     `mapstructure:"max_tokens"     yaml:"max_tokens"     json:"max_tokens"     validate:"gt=0"`
	TimeoutSec    int     `mapstructure:"timeout_sec"    yaml:"timeout_sec"    json:"timeout_sec"    validate:"gt=0"`
	AppTitle      string  `mapstructure:"app_title"      yaml:"app_title"      json:"app_title"`
	Referer       string  `mapstructure:"referer"        yaml:"referer"        json:"referer"`
}

// MarketConfig holds market-data source settings.
type MarketConfig struct {
	Provider     string `mapstructure:"provider"      yaml:"provider"      json:"provider"      validate:"oneof=fmp mock"`
	FMPKey       string `mapstructure:"fmp_key"       yaml:"-"             json:"-"`
	BaseURL      string `mapstructure:"base_url"      yaml:"base_url"      json:"base_url"      validate:"omitempty,url"`
	HistoryLimit int    `mapstructure:"history_limit" yaml:"history_limit" json:"history_limit" validate:"gt=0,lte=40"`
	SearchLimit  int    `mapstructure:"search_limit"  yaml:"search_limit"  json:"search_limit"  validate:"gt=0,lte=100"`
}

// NewsConfig holds headline feed settings. FeedURL may contain {symbol}.
type NewsConfig struct {
	Enabled bool   `mapstructure:"enabled"  yaml:"enabled"  json:"enabled"`
	FeedURL string `mapstructure:"feed_url" yaml:"feed_url" json:"feed_url"`
	Limit   int    `mapstructure:"limit"    yaml:"limit"    json:"limit"    validate:"gte=0"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"         validate:"gt=0,lte=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"  validate:"oneof=trace debug info warn error"` // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"oneof=text json"`                   // "text" or "json"
}

// Timeout returns the completion request timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// KeyFor returns the API key for the named provider ("" if none is needed or set).
func (c LLMConfig) KeyFor(provider string) string {
	switch provider {
	case "openrouter":
		return c.OpenRouterKey
	case "openai":
		return c.OpenAIKey
	case "anthropic":
		return c.AnthropicKey
	case "gemini":
		return c.GeminiKey
	}
	return ""
}

var validate = validator.New()

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var (
	pathMu     sync.RWMutex
	activePath string
)

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.equityscope/config.yaml (home directory)
//  3. /etc/equityscope/config.yaml (system)
//
// Environment variables override config file values.
// Format: EQUITYSCOPE_<SECTION>_<KEY>, e.g., EQUITYSCOPE_LLM_MODEL
func Load() (*Config, error) {
	v := newViper()

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".equityscope"))
	v.AddConfigPath("/etc/equityscope")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults + env vars
	}

	return finish(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	// Environment variable settings
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override sensitive values from environment
	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setActivePath(v.ConfigFileUsed())
	return &cfg, nil
}

// Default returns the built-in defaults without reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.model", "google/gemini-2.5-flash")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 4000)
	v.SetDefault("llm.timeout_sec", 120)
	v.SetDefault("llm.app_title", "Investment Analysis Tool")

	// Market data defaults
	v.SetDefault("market.provider", "fmp")
	v.SetDefault("market.base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("market.history_limit", 5)
	v.SetDefault("market.search_limit", 10)

	// News defaults
	v.SetDefault("news.enabled", true)
	v.SetDefault("news.feed_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s={symbol}&region=US&lang=en-US")
	v.SetDefault("news.limit", 8)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:8080"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("testing_mode", false)
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The bare FMP_API_KEY / OPENROUTER_API_KEY / OPENAI_API_KEY names are accepted
// when the prefixed variable is unset.
func overrideFromEnv(cfg *Config) {
	for _, o := range secretEnv(cfg) {
		for _, name := range o.envVars {
			if key := os.Getenv(name); key != "" {
				*o.dst = key
				break
			}
		}
	}
}

type secretVar struct {
	label   string
	dst     *string
	envVars []string
}

func secretEnv(cfg *Config) []secretVar {
	return []secretVar{
		{"OpenRouter API Key", &cfg.LLM.OpenRouterKey, []string{"EQUITYSCOPE_LLM_OPENROUTER_KEY", "OPENROUTER_API_KEY"}},
		{"OpenAI API Key", &cfg.LLM.OpenAIKey, []string{"EQUITYSCOPE_LLM_OPENAI_KEY", "OPENAI_API_KEY"}},
		{"Anthropic API Key", &cfg.LLM.AnthropicKey, []string{"EQUITYSCOPE_LLM_ANTHROPIC_KEY", "ANTHROPIC_API_KEY"}},
		{"Gemini API Key", &cfg.LLM.GeminiKey, []string{"EQUITYSCOPE_LLM_GEMINI_KEY", "GEMINI_API_KEY"}},
		{"FMP API Key", &cfg.Market.FMPKey, []string{"EQUITYSCOPE_MARKET_FMP_KEY", "FMP_API_KEY"}},
	}
}

func setActivePath(p string) {
	pathMu.Lock()
	defer pathMu.Unlock()
	activePath = p
}

// ConfigFilePath returns the config file that was loaded, or the per-user
// default (~/.equityscope/config.yaml) when none was found.
func ConfigFilePath() string {
	pathMu.RLock()
	defer pathMu.RUnlock()
	if activePath != "" {
		return activePath
	}
	return filepath.Join(homeDir(), ".equityscope", "config.yaml")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
