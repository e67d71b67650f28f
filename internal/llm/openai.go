package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Default endpoints for the OpenAI-compatible backends.
const (
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	OpenAIBaseURL     = "https://api.openai.com/v1"
)

// openRouterModels are the models offered in the dashboard's model picker.
var openRouterModels = []string{
	"google/gemini-2.5-flash",
	"google/gemini-2.5-pro",
	"deepseek/deepseek-chat:free",
	"deepseek/deepseek-r1-0528:free",
	"openai/gpt-4.1-nano",
	"anthropic/claude-sonnet-4",
}

var openAIModels = []string{
	"gpt-4.1",
	"gpt-4.1-mini",
	"gpt-4.1-nano",
	"gpt-4o",
	"gpt-4o-mini",
	"o3-mini",
}

var ollamaModels = []string{
	"llama3.1:8b",
	"qwen2.5:7b",
	"mistral:7b",
}

// OpenAIProvider implements Provider for any OpenAI-compatible Chat
// Completions endpoint: OpenRouter, OpenAI itself, or a local Ollama.
type OpenAIProvider struct {
	name        string
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
	models      []string
}

type openAISettings struct {
	name        string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
	headers     map[string]string
	models      []string
}

// OpenAIOption configures the OpenAI-compatible provider.
type OpenAIOption func(*openAISettings)

// WithOpenAIBaseURL sets a custom base URL (e.g., a proxy or test server).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(s *openAISettings) {
		if url != "" {
			s.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithOpenAIModel sets the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(s *openAISettings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithOpenAIDefaults sets the default temperature and completion budget.
func WithOpenAIDefaults(temperature float64, maxTokens int) OpenAIOption {
	return func(s *openAISettings) {
		s.temperature = temperature
		s.maxTokens = maxTokens
	}
}

// WithOpenAITimeout sets the per-request timeout of the default HTTP client.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(s *openAISettings) { s.timeout = d }
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(s *openAISettings) { s.httpClient = client }
}

// WithOpenAIHeader adds a header to every request.
func WithOpenAIHeader(key, value string) OpenAIOption {
	return func(s *openAISettings) {
		if value != "" {
			s.headers[key] = value
		}
	}
}

// NewOpenAIProvider creates a provider for the OpenAI API.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	s := newOpenAISettings(ProviderOpenAI, OpenAIBaseURL, "gpt-4.1-mini", openAIModels)
	return newOpenAICompatible(apiKey, s, opts)
}

// NewOpenRouterProvider creates a provider for OpenRouter. appTitle and
// referer are sent as the X-Title and HTTP-Referer attribution headers.
func NewOpenRouterProvider(apiKey, appTitle, referer string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	s := newOpenAISettings(ProviderOpenRouter, OpenRouterBaseURL, "google/gemini-2.5-flash", openRouterModels)
	s.headers["X-Title"] = appTitle
	if referer != "" {
		s.headers["HTTP-Referer"] = referer
	}
	return newOpenAICompatible(apiKey, s, opts)
}

// NewOllamaProvider creates a provider for a local Ollama server using its
// OpenAI-compatible /v1 endpoint. No API key is needed.
func NewOllamaProvider(baseURL string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	s := newOpenAISettings(ProviderOllama, strings.TrimRight(baseURL, "/")+"/v1", "llama3.1:8b", ollamaModels)
	return newOpenAICompatible("ollama", s, opts)
}

func newOpenAISettings(name, baseURL, model string, models []string) *openAISettings {
	return &openAISettings{
		name:        name,
		baseURL:     baseURL,
		model:       model,
		temperature: 0.3,
		maxTokens:   4000,
		timeout:     120 * time.Second,
		headers:     map[string]string{},
		models:      models,
	}
}

func newOpenAICompatible(apiKey string, s *openAISettings, opts []OpenAIOption) (*OpenAIProvider, error) {
	for _, opt := range opts {
		opt(s)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = s.baseURL

	hc := s.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: s.timeout}
	}
	if len(s.headers) > 0 {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *hc
		wrapped.Transport = &headerTransport{base: base, headers: s.headers}
		hc = &wrapped
	}
	cfg.HTTPClient = hc

	return &OpenAIProvider{
		name:        s.name,
		client:      openai.NewClientWithConfig(cfg),
		model:       s.model,
		temperature: s.temperature,
		maxTokens:   s.maxTokens,
		models:      s.models,
	}, nil
}

func (p *OpenAIProvider) Name() string     { return p.name }
func (p *OpenAIProvider) Models() []string { return p.models }

// Ping verifies the API key by listing models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return p.mapError(err)
	}
	return nil
}

// Chat sends a chat completion request.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	o := resolve(opts, p.model, p.temperature, p.maxTokens)

	req := openai.ChatCompletionRequest{
		Model:       o.Model,
		Messages:    convertToOpenAIMessages(messages),
		Temperature: float32(o.Temperature),
		MaxTokens:   o.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, p.mapError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyCompletion
	}

	model := resp.Model
	if model == "" {
		model = o.Model
	}
	choice := resp.Choices[0]
	return &Response{
		Content:      choice.Message.Content,
		FinishReason: mapFinishReason(string(choice.FinishReason)),
		Model:        model,
		Provider:     p.name,
		Latency:      time.Since(start),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// ── Helpers ──

// mapError converts go-openai errors into the package sentinels.
func (p *OpenAIProvider) mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := fmt.Sprint(apiErr.Code)
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrNoAPIKey, apiErr.Message)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", ErrRateLimit, apiErr.Message)
		case strings.Contains(code, "context_length"):
			return fmt.Errorf("%w: %s", ErrContextLength, apiErr.Message)
		case strings.Contains(code, "model_not_found") || apiErr.HTTPStatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrInvalidModel, apiErr.Message)
		}
		return fmt.Errorf("%s: API error (%d): %s", p.name, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrNoAPIKey, reqErr.Err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimit, reqErr.Err)
		}
		return fmt.Errorf("%w: %s: HTTP %d", ErrProviderDown, p.name, reqErr.HTTPStatusCode)
	}

	return fmt.Errorf("%w: %s: %v", ErrProviderDown, p.name, err)
}

func convertToOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

func mapFinishReason(reason string) FinishReason {
	switch reason {
	case "stop", "end_turn", "STOP":
		return FinishStop
	case "length", "max_tokens", "MAX_TOKENS":
		return FinishLength
	default:
		return FinishReason(reason)
	}
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
