package aiprov_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"review_pulse/internal/adapters/aiprov"
	"review_pulse/internal/domain"
)

var testPrompt = domain.RenderedPrompt{System: "sys", User: "usr"}

func testOpts(url string) aiprov.Options {
	return aiprov.Options{BaseURL: url, Timeout: 2 * time.Second, RPS: 1000}
}

func openAIReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"model": "gpt-4o-mini",
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestOpenAI_SubmitParsesJSONReply(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openAIReply(`{"recommendations":["hire a host","trim the menu"],"confidence":0.7,"reasoning":"waits dominate complaints"}`)))
	}))
	defer srv.Close()

	p := aiprov.NewOpenAI(testOpts(srv.URL))
	resp, err := p.Submit(context.Background(), domain.AIConfig{Provider: domain.ProviderOpenAI, APIKey: "sk-test"}, testPrompt)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth header: %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("path: %q", gotPath)
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Fatalf("model: %v", gotBody["model"])
	}
	if len(resp.Recommendations) != 2 || resp.Confidence != 0.7 {
		t.Fatalf("resp: %+v", resp)
	}
	if resp.Reasoning != "waits dominate complaints" {
		t.Fatalf("reasoning: %q", resp.Reasoning)
	}
	if resp.Provider != "openai" {
		t.Fatalf("provider: %q", resp.Provider)
	}
}

func TestOpenAI_LineFallbackParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(openAIReply("- hire a host\n- trim the menu\n- add online booking")))
	}))
	defer srv.Close()

	p := aiprov.NewOpenAI(testOpts(srv.URL))
	resp, err := p.Submit(context.Background(), domain.AIConfig{APIKey: "k"}, testPrompt)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(resp.Recommendations) != 3 {
		t.Fatalf("recommendations: %v", resp.Recommendations)
	}
	if resp.Recommendations[0] != "hire a host" {
		t.Fatalf("bullet not stripped: %q", resp.Recommendations[0])
	}
	if resp.Confidence != 0.5 {
		t.Fatalf("confidence: %f", resp.Confidence)
	}
}

func TestOpenAI_EmptyKeyFailsWithoutNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("request reached the server with no API key")
	}))
	defer srv.Close()

	p := aiprov.NewOpenAI(testOpts(srv.URL))
	_, err := p.Submit(context.Background(), domain.AIConfig{APIKey: "   "}, testPrompt)
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("err: %v", err)
	}
}

func TestOpenAI_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, nil, domain.ErrAuth},
		{"forbidden", http.StatusForbidden, nil, domain.ErrAuth},
		{"throttled", http.StatusTooManyRequests, http.Header{"Retry-After": {"7"}}, domain.ErrRateLimit},
		{"server error", http.StatusInternalServerError, nil, domain.ErrProviderUnavailable},
		{"bad gateway", http.StatusBadGateway, nil, domain.ErrProviderUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				for k, vs := range tc.header {
					w.Header()[k] = vs
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer srv.Close()

			p := aiprov.NewOpenAI(testOpts(srv.URL))
			_, err := p.Submit(context.Background(), domain.AIConfig{APIKey: "k"}, testPrompt)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err: %v, want %v", err, tc.want)
			}

			var pe *domain.ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("not a ProviderError: %v", err)
			}
			if pe.StatusCode != tc.status {
				t.Fatalf("status: %d", pe.StatusCode)
			}
			if pe.Message != "nope" {
				t.Fatalf("vendor message lost: %q", pe.Message)
			}
			if tc.status == http.StatusTooManyRequests && pe.RetryAfter != 7*time.Second {
				t.Fatalf("retry-after: %v", pe.RetryAfter)
			}
		})
	}
}

func TestOpenAI_TimeoutMapsToErrTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(openAIReply("late")))
	}))
	defer srv.Close()

	p := aiprov.NewOpenAI(aiprov.Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, RPS: 1000})
	_, err := p.Submit(context.Background(), domain.AIConfig{APIKey: "k"}, testPrompt)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("err: %v", err)
	}
}

func TestOpenAI_CallerCancellationIsNotATimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(openAIReply("late")))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := aiprov.NewOpenAI(testOpts(srv.URL))
	_, err := p.Submit(ctx, domain.AIConfig{APIKey: "k"}, testPrompt)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err: %v", err)
	}
	if errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("cancellation misclassified as timeout: %v", err)
	}
}

func TestOpenAI_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>definitely not json</html>"))
	}))
	defer srv.Close()

	p := aiprov.NewOpenAI(testOpts(srv.URL))
	_, err := p.Submit(context.Background(), domain.AIConfig{APIKey: "k"}, testPrompt)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("err: %v", err)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini","choices":[]}`))
	}))
	defer srv.Close()

	p := aiprov.NewOpenAI(testOpts(srv.URL))
	_, err := p.Submit(context.Background(), domain.AIConfig{APIKey: "k"}, testPrompt)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("err: %v", err)
	}
}

func TestClaude_SubmitHeadersAndParse(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"model":"claude-3-5-haiku-latest","content":[{"type":"text","text":"{\"recommendations\":[\"a\",\"b\"],\"confidence\":0.6}"}]}`))
	}))
	defer srv.Close()

	p := aiprov.NewClaude(testOpts(srv.URL))
	resp, err := p.Submit(context.Background(), domain.AIConfig{APIKey: "ak"}, testPrompt)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if gotKey != "ak" || gotVersion != "2023-06-01" {
		t.Fatalf("headers: key=%q version=%q", gotKey, gotVersion)
	}
	// max_tokens is mandatory for this vendor and must default when unset
	if gotBody["max_tokens"] != float64(1024) {
		t.Fatalf("max_tokens: %v", gotBody["max_tokens"])
	}
	if gotBody["system"] != "sys" {
		t.Fatalf("system: %v", gotBody["system"])
	}
	if len(resp.Recommendations) != 2 || resp.Confidence != 0.6 {
		t.Fatalf("resp: %+v", resp)
	}
}

func TestGemini_QueryKeyAuthAndParse(t *testing.T) {
	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"recommendations\":[\"x\"],\"confidence\":0.55}"}]}}]}`))
	}))
	defer srv.Close()

	p := aiprov.NewGemini(testOpts(srv.URL))
	resp, err := p.Submit(context.Background(), domain.AIConfig{APIKey: "gk", Model: "gemini-1.5-flash"}, testPrompt)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if gotKey != "gk" {
		t.Fatalf("query key: %q", gotKey)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Fatalf("path: %q", gotPath)
	}
	if len(resp.Recommendations) != 1 || resp.Confidence != 0.55 {
		t.Fatalf("resp: %+v", resp)
	}
	if resp.Provider != "gemini" {
		t.Fatalf("provider: %q", resp.Provider)
	}
}

func TestNew_ClosedProviderSet(t *testing.T) {
	for _, pt := range []domain.ProviderType{domain.ProviderOpenAI, domain.ProviderClaude, domain.ProviderGemini} {
		p, err := aiprov.New(pt, aiprov.Options{})
		if err != nil {
			t.Fatalf("%s: %v", pt, err)
		}
		if p.Name() != string(pt) {
			t.Fatalf("name mismatch: %s vs %s", p.Name(), pt)
		}
	}
	if _, err := aiprov.New("mistral", aiprov.Options{}); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestConfidenceEstimatedWhenModelOmitsIt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(openAIReply(`{"recommendations":["a","b","c"],"reasoning":"r"}`)))
	}))
	defer srv.Close()

	p := aiprov.NewOpenAI(testOpts(srv.URL))
	resp, err := p.Submit(context.Background(), domain.AIConfig{APIKey: "k"}, testPrompt)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	// 0.4 + 0.1 per recommendation
	if math.Abs(resp.Confidence-0.7) > 1e-9 {
		t.Fatalf("confidence: %f", resp.Confidence)
	}
}
