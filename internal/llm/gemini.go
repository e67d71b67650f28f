package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiModels lists commonly available Gemini models.
var geminiModels = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.0-flash",
}

// GeminiProvider implements Provider on the Gemini API.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float64
	maxTokens   int
}

type geminiSettings struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	timeout     time.Duration
}

// GeminiOption configures the Gemini provider.
type GeminiOption func(*geminiSettings)

// WithGeminiModel sets the default model. An OpenRouter id such as
// "google/gemini-2.5-flash" is reduced to its Gemini name.
func WithGeminiModel(model string) GeminiOption {
	return func(s *geminiSettings) {
		if m := geminiModelName(model); m != "" {
			s.model = m
		}
	}
}

// WithGeminiBaseURL sets a custom base URL.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(s *geminiSettings) { s.baseURL = strings.TrimRight(url, "/") }
}

// WithGeminiDefaults sets the default temperature and completion budget.
func WithGeminiDefaults(temperature float64, maxTokens int) GeminiOption {
	return func(s *geminiSettings) {
		s.temperature = temperature
		s.maxTokens = maxTokens
	}
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(s *geminiSettings) { s.httpClient = client }
}

// WithGeminiTimeout sets the per-request timeout of the default HTTP client.
func WithGeminiTimeout(d time.Duration) GeminiOption {
	return func(s *geminiSettings) { s.timeout = d }
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(apiKey string, opts ...GeminiOption) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	s := &geminiSettings{
		model:       "gemini-2.5-flash",
		temperature: 0.3,
		maxTokens:   4000,
		timeout:     120 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	hc := s.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: s.timeout}
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if s.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: s.baseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiProvider{
		client:      client,
		model:       s.model,
		temperature: s.temperature,
		maxTokens:   s.maxTokens,
	}, nil
}

func (p *GeminiProvider) Name() string     { return ProviderGemini }
func (p *GeminiProvider) Models() []string { return geminiModels }

// Ping verifies the API key by fetching the default model's metadata.
func (p *GeminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model, nil); err != nil {
		return mapGeminiError(err)
	}
	return nil
}

// Chat sends a GenerateContent request.
func (p *GeminiProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	o := resolve(opts, p.model, p.temperature, p.maxTokens)
	model := geminiModelName(o.Model)
	if model == "" {
		model = p.model
	}

	system, rest := splitSystem(messages)
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(o.Temperature)),
		MaxOutputTokens: int32(o.MaxTokens),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, convertToGeminiContents(rest), cfg)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	var text strings.Builder
	var finish string
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				text.WriteString(part.Text)
			}
			if text.Len() > 0 {
				finish = string(cand.FinishReason)
				break
			}
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, ErrEmptyCompletion
	}

	r := &Response{
		Content:      text.String(),
		FinishReason: mapFinishReason(finish),
		Model:        model,
		Provider:     ProviderGemini,
		Latency:      time.Since(start),
	}
	if u := resp.UsageMetadata; u != nil {
		r.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return r, nil
}

func convertToGeminiContents(messages []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := string(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = string(genai.RoleModel)
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(m.Content)},
		})
	}
	return out
}

// geminiModelName strips an OpenRouter vendor prefix and rejects ids that
// are not Gemini models.
func geminiModelName(model string) string {
	model = strings.ToLower(strings.TrimPrefix(model, "google/"))
	if !strings.HasPrefix(model, "gemini") {
		return ""
	}
	return model
}

func mapGeminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "PERMISSION_DENIED"):
		return fmt.Errorf("%w: gemini: %v", ErrNoAPIKey, err)
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: gemini: %v", ErrRateLimit, err)
	case strings.Contains(msg, "NOT_FOUND"):
		return fmt.Errorf("%w: gemini: %v", ErrInvalidModel, err)
	}
	return fmt.Errorf("%w: gemini: %v", ErrProviderDown, err)
}
