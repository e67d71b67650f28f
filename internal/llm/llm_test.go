package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/equityscope/internal/config"
)

// ════════════════════════════════════════════════════════════════════
// provider.go: types & helpers
// ════════════════════════════════════════════════════════════════════

func TestMessageConstructors(t *testing.T) {
	if m := SystemMessage("sys"); m.Role != RoleSystem || m.Content != "sys" {
		t.Fatalf("SystemMessage: %+v", m)
	}
	if m := UserMessage("hi"); m.Role != RoleUser {
		t.Fatalf("UserMessage: %+v", m)
	}
	if m := AssistantMessage("ok"); m.Role != RoleAssistant {
		t.Fatalf("AssistantMessage: %+v", m)
	}
}

func TestResponseString(t *testing.T) {
	r := &Response{Content: strings.Repeat("x", 150), Provider: "openrouter", Model: "m", Latency: 1500 * time.Millisecond}
	s := r.String()
	if !strings.Contains(s, "[openrouter/m]") || !strings.Contains(s, "...") {
		t.Fatalf("unexpected String(): %s", s)
	}
}

func TestDefaultProviderConfig(t *testing.T) {
	cfg := DefaultProviderConfig()
	if cfg.Temperature != 0.3 || cfg.MaxTokens != 4000 || cfg.Timeout != 120*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestSplitSystem(t *testing.T) {
	sys, rest := splitSystem([]Message{SystemMessage("a"), UserMessage("u"), SystemMessage("b")})
	if sys != "a\n\nb" {
		t.Fatalf("system: %q", sys)
	}
	if len(rest) != 1 || rest[0].Content != "u" {
		t.Fatalf("rest: %+v", rest)
	}
}

func TestResolve(t *testing.T) {
	got := resolve(nil, "m", 0.3, 4000)
	if got.Model != "m" || got.Temperature != 0.3 || got.MaxTokens != 4000 {
		t.Fatalf("nil opts: %+v", got)
	}
	got = resolve(&ChatOptions{Model: "x", MaxTokens: 10}, "m", 0.3, 4000)
	if got.Model != "x" || got.Temperature != 0.3 || got.MaxTokens != 10 {
		t.Fatalf("partial opts: %+v", got)
	}
}

// ════════════════════════════════════════════════════════════════════
// openai.go: OpenRouter, OpenAI and Ollama
// ════════════════════════════════════════════════════════════════════

func chatCompletionJSON(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":    "chatcmpl-123",
		"model": "google/gemini-2.5-flash",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 20, "completion_tokens": 10, "total_tokens": 30},
	})
	return string(b)
}

func TestOpenAIProviderNew(t *testing.T) {
	if _, err := NewOpenAIProvider(""); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got: %v", err)
	}
	if _, err := NewOpenRouterProvider("", "t", ""); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got: %v", err)
	}

	p, err := NewOpenAIProvider("sk-test", WithOpenAIModel("gpt-4o"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "openai" || p.model != "gpt-4o" {
		t.Fatalf("unexpected config: %+v", p)
	}
	if len(p.Models()) == 0 {
		t.Fatal("Models() should not be empty")
	}
}

func TestOpenRouterChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-or-test" {
			t.Errorf("missing auth header")
		}
		if r.Header.Get("X-Title") != "Investment Analysis Tool" {
			t.Errorf("X-Title: %q", r.Header.Get("X-Title"))
		}
		if r.Header.Get("HTTP-Referer") != "https://equityscope.local" {
			t.Errorf("HTTP-Referer: %q", r.Header.Get("HTTP-Referer"))
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "google/gemini-2.5-flash" {
			t.Errorf("model: %v", req["model"])
		}
		if req["temperature"] != 0.3 {
			t.Errorf("temperature: %v", req["temperature"])
		}
		if req["max_tokens"] != float64(4000) {
			t.Errorf("max_tokens: %v", req["max_tokens"])
		}
		if msgs, _ := req["messages"].([]any); len(msgs) != 2 {
			t.Errorf("expected 2 messages, got %v", req["messages"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionJSON("SECTION_1_SNAPSHOT\nRating: Buy")))
	}))
	defer server.Close()

	p, err := NewOpenRouterProvider("sk-or-test", "Investment Analysis Tool", "https://equityscope.local",
		WithOpenAIBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := p.Chat(context.Background(),
		[]Message{SystemMessage("You are a professional financial analyst."), UserMessage("Analyse TSLA")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "SECTION_1_SNAPSHOT\nRating: Buy" {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if resp.Provider != ProviderOpenRouter || resp.Usage.TotalTokens != 30 || resp.FinishReason != FinishStop {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestOpenAIChatOptionsOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "gpt-4.1-nano" || req["max_tokens"] != float64(100) {
			t.Errorf("options not applied: %v", req)
		}
		w.Write([]byte(chatCompletionJSON("ok")))
	}))
	defer server.Close()

	p, _ := NewOpenAIProvider("sk-test", WithOpenAIBaseURL(server.URL))
	if _, err := p.Chat(context.Background(), []Message{UserMessage("x")},
		&ChatOptions{Model: "gpt-4.1-nano", MaxTokens: 100}); err != nil {
		t.Fatal(err)
	}
}

func TestOpenAIEmptyCompletion(t *testing.T) {
	bodies := map[string]string{
		"blank content": chatCompletionJSON("   "),
		"no choices":    `{"id":"x","choices":[],"usage":{}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			p, _ := NewOpenAIProvider("sk-test", WithOpenAIBaseURL(server.URL))
			_, err := p.Chat(context.Background(), []Message{UserMessage("x")}, nil)
			if !errors.Is(err, ErrEmptyCompletion) {
				t.Fatalf("expected ErrEmptyCompletion, got %v", err)
			}
		})
	}
}

func TestOpenAIErrorHandling(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		want       error
	}{
		{
			name:       "unauthorized",
			statusCode: 401,
			body:       `{"error":{"message":"Invalid key","type":"auth","code":"invalid_api_key"}}`,
			want:       ErrNoAPIKey,
		},
		{
			name:       "rate_limit",
			statusCode: 429,
			body:       `{"error":{"message":"Rate limit exceeded","type":"rate_limit"}}`,
			want:       ErrRateLimit,
		},
		{
			name:       "context_length",
			statusCode: 400,
			body:       `{"error":{"message":"Too many tokens","code":"context_length_exceeded"}}`,
			want:       ErrContextLength,
		},
		{
			name:       "model_not_found",
			statusCode: 400,
			body:       `{"error":{"message":"Model not found","code":"model_not_found"}}`,
			want:       ErrInvalidModel,
		},
		{
			name:       "gateway",
			statusCode: 502,
			body:       `<html>bad gateway</html>`,
			want:       ErrProviderDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p, _ := NewOpenAIProvider("sk-test", WithOpenAIBaseURL(server.URL))
			_, err := p.Chat(context.Background(), []Message{UserMessage("test")}, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got: %v", tt.want, err)
			}
		})
	}
}

func TestOpenAIContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p, _ := NewOpenAIProvider("sk-test", WithOpenAIBaseURL(server.URL))
	_, err := p.Chat(ctx, []Message{UserMessage("x")}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestOpenAIPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o","object":"model"}]}`))
	}))
	defer server.Close()

	p, _ := NewOpenAIProvider("sk-test", WithOpenAIBaseURL(server.URL))
	if err := p.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestOllamaChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(chatCompletionJSON("local answer")))
	}))
	defer server.Close()

	p, err := NewOllamaProvider(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Chat(context.Background(), []Message{UserMessage("x")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Provider != ProviderOllama || resp.Content != "local answer" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHeaderTransportKeepsCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 5 * time.Second}
	p, err := NewOpenRouterProvider("sk-or", "T", "", WithOpenAIHTTPClient(custom))
	if err != nil || p == nil {
		t.Fatalf("NewOpenRouterProvider: %v", err)
	}
	if custom.Transport != nil {
		t.Fatal("caller's client must not be mutated")
	}
}

// ════════════════════════════════════════════════════════════════════
// anthropic.go / gemini.go
// ════════════════════════════════════════════════════════════════════

func TestAnthropicProviderNew(t *testing.T) {
	if _, err := NewAnthropicProvider(""); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
	p, err := NewAnthropicProvider("sk-ant", WithAnthropicModel("google/gemini-2.5-flash"))
	if err != nil {
		t.Fatal(err)
	}
	if p.model != "claude-sonnet-4-20250514" {
		t.Fatalf("non-Claude model should be ignored, got %q", p.model)
	}
}

func TestAnthropicChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "sk-ant-test" {
			t.Errorf("missing api key header")
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["system"] == nil {
			t.Errorf("system prompt should be sent out of band: %v", req)
		}
		if msgs, _ := req["messages"].([]any); len(msgs) != 1 {
			t.Errorf("expected 1 message, got %v", req["messages"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-20250514",
			"content":[{"type":"text","text":"SECTION_1_SNAPSHOT"}],"stop_reason":"end_turn",
			"usage":{"input_tokens":12,"output_tokens":4}}`))
	}))
	defer server.Close()

	p, _ := NewAnthropicProvider("sk-ant-test", WithAnthropicBaseURL(server.URL))
	resp, err := p.Chat(context.Background(), []Message{SystemMessage("sys"), UserMessage("Analyse TSLA")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "SECTION_1_SNAPSHOT" || resp.Usage.TotalTokens != 16 || resp.FinishReason != FinishStop {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAnthropicUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	p, _ := NewAnthropicProvider("sk-bad", WithAnthropicBaseURL(server.URL))
	_, err := p.Chat(context.Background(), []Message{UserMessage("x")}, nil)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGeminiChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "gemini-2.5-pro:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"SECTION_1_"},{"text":"SNAPSHOT"}]},
			"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":2,"totalTokenCount":5}}`))
	}))
	defer server.Close()

	p, err := NewGeminiProvider("gm-test", WithGeminiBaseURL(server.URL), WithGeminiModel("google/gemini-2.5-pro"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Chat(context.Background(), []Message{SystemMessage("sys"), UserMessage("x")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "SECTION_1_SNAPSHOT" || resp.Usage.TotalTokens != 5 || resp.FinishReason != FinishStop {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGeminiModelName(t *testing.T) {
	tests := map[string]string{
		"google/gemini-2.5-flash": "gemini-2.5-flash",
		"gemini-2.0-flash":        "gemini-2.0-flash",
		"google/gemini-2.5-Flash": "gemini-2.5-flash",
		"openai/gpt-4.1-nano":     "",
	}
	for in, want := range tests {
		if got := geminiModelName(in); got != want {
			t.Errorf("geminiModelName(%q) = %q, want %q", in, got, want)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// mock.go / factory.go
// ════════════════════════════════════════════════════════════════════

func TestMockProvider(t *testing.T) {
	p := NewMockProvider(0)
	resp, err := p.Chat(context.Background(), []Message{UserMessage("Apple")}, &ChatOptions{Model: "any"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != MockAnalysis || resp.Model != "any" || resp.Provider != ProviderMock {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !strings.Contains(resp.Content, "SECTION_8_INVESTMENT_SUMMARY") {
		t.Fatal("mock analysis should carry every section")
	}
}

func TestMockProviderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockProvider(time.Hour).Chat(ctx, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	base := config.Default().LLM

	tests := []struct {
		name        string
		cfg         func(c *config.LLMConfig)
		testingMode bool
		o           Overrides
		wantName    string
		wantErr     error
	}{
		{name: "testing mode", testingMode: true, wantName: ProviderMock},
		{name: "openrouter without key", wantErr: ErrNoAPIKey},
		{name: "openrouter with request key", o: Overrides{APIKey: "sk-or-req"}, wantName: ProviderOpenRouter},
		{name: "openrouter with config key", cfg: func(c *config.LLMConfig) { c.OpenRouterKey = "sk-or-cfg" }, wantName: ProviderOpenRouter},
		{name: "provider override", o: Overrides{Provider: "Anthropic", APIKey: "sk-ant"}, wantName: ProviderAnthropic},
		{name: "gemini from config", cfg: func(c *config.LLMConfig) { c.Provider = "gemini"; c.GeminiKey = "gm" }, wantName: ProviderGemini},
		{name: "ollama needs no key", cfg: func(c *config.LLMConfig) { c.Provider = "ollama" }, wantName: ProviderOllama},
		{name: "mock provider", o: Overrides{Provider: "mock"}, wantName: ProviderMock},
		{name: "unknown", o: Overrides{Provider: "carrier-pigeon"}, wantErr: ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			p, err := NewProvider(cfg, tt.testingMode, tt.o)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if p.Name() != tt.wantName {
				t.Fatalf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestNewProviderSendsConfiguredRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "openai/gpt-4.1-nano" {
			t.Errorf("model override not applied: %v", req["model"])
		}
		if r.Header.Get("X-Title") != "Investment Analysis Tool" {
			t.Errorf("X-Title: %q", r.Header.Get("X-Title"))
		}
		w.Write([]byte(chatCompletionJSON("ok")))
	}))
	defer server.Close()

	cfg := config.Default().LLM
	cfg.BaseURL = server.URL
	p, err := NewProvider(cfg, false, Overrides{APIKey: "sk-or", Model: "openai/gpt-4.1-nano"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Chat(context.Background(), []Message{UserMessage("x")}, nil); err != nil {
		t.Fatal(err)
	}
}

func TestCatalog(t *testing.T) {
	groups := Catalog()
	if len(groups) != 5 || groups[0].Provider != ProviderOpenRouter {
		t.Fatalf("unexpected catalog: %+v", groups)
	}
	if groups[0].Models[0] != "google/gemini-2.5-flash" {
		t.Fatalf("default model should lead: %v", groups[0].Models)
	}
}
