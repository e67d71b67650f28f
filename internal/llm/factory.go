package llm

import (
	"fmt"
	"strings"

	"github.com/seenimoa/equityscope/internal/config"
)

// Overrides are per-request choices that take precedence over the
// configured provider, key and model. Empty fields keep the config value.
type Overrides struct {
	Provider string
	APIKey   string
	Model    string
}

// NewProvider builds the backend selected by cfg and o. testingMode always
// yields the mock provider.
func NewProvider(cfg config.LLMConfig, testingMode bool, o Overrides) (Provider, error) {
	if testingMode {
		return NewMockProvider(0), nil
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if o.Provider != "" {
		name = strings.ToLower(strings.TrimSpace(o.Provider))
	}
	key := cfg.KeyFor(name)
	if o.APIKey != "" {
		key = o.APIKey
	}
	model := cfg.Model
	if o.Model != "" {
		model = o.Model
	}

	switch name {
	case ProviderOpenRouter, "":
		return NewOpenRouterProvider(key, cfg.AppTitle, cfg.Referer,
			WithOpenAIBaseURL(cfg.BaseURL),
			WithOpenAIModel(model),
			WithOpenAIDefaults(cfg.Temperature, cfg.MaxTokens),
			WithOpenAITimeout(cfg.Timeout()),
		)
	case ProviderOpenAI:
		return NewOpenAIProvider(key,
			WithOpenAIBaseURL(cfg.BaseURL),
			WithOpenAIModel(model),
			WithOpenAIDefaults(cfg.Temperature, cfg.MaxTokens),
			WithOpenAITimeout(cfg.Timeout()),
		)
	case ProviderOllama:
		return NewOllamaProvider(cfg.OllamaURL,
			WithOpenAIModel(model),
			WithOpenAIDefaults(cfg.Temperature, cfg.MaxTokens),
			WithOpenAITimeout(cfg.Timeout()),
		)
	case ProviderAnthropic:
		opts := []AnthropicOption{
			WithAnthropicModel(model),
			WithAnthropicDefaults(cfg.Temperature, cfg.MaxTokens),
			WithAnthropicTimeout(cfg.Timeout()),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithAnthropicBaseURL(cfg.BaseURL))
		}
		return NewAnthropicProvider(key, opts...)
	case ProviderGemini:
		opts := []GeminiOption{
			WithGeminiModel(model),
			WithGeminiDefaults(cfg.Temperature, cfg.MaxTokens),
			WithGeminiTimeout(cfg.Timeout()),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithGeminiBaseURL(cfg.BaseURL))
		}
		return NewGeminiProvider(key, opts...)
	case ProviderMock:
		return NewMockProvider(0), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// ModelGroup lists the suggested models of one provider.
type ModelGroup struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

// Catalog returns the suggested models of every provider, OpenRouter first.
func Catalog() []ModelGroup {
	return []ModelGroup{
		{Provider: ProviderOpenRouter, Models: openRouterModels},
		{Provider: ProviderOpenAI, Models: openAIModels},
		{Provider: ProviderAnthropic, Models: anthropicModels},
		{Provider: ProviderGemini, Models: geminiModels},
		{Provider: ProviderOllama, Models: ollamaModels},
	}
}
