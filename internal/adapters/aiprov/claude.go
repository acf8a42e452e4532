package aiprov

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"review_pulse/internal/domain"
)

const (
	claudeBase         = "https://api.anthropic.com/v1"
	claudeDefaultModel = "claude-3-5-haiku-latest"
	claudeAPIVersion   = "2023-06-01"

	// Anthropic requires max_tokens on every request.
	claudeDefaultMaxTokens = 1024
)

type Claude struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func NewClaude(opts Options) *Claude {
	opts = opts.withDefaults(claudeBase)
	return &Claude{base: opts.BaseURL, hc: opts.client(), rl: opts.limiter()}
}

func (c *Claude) Name() string { return string(domain.ProviderClaude) }

func (c *Claude) Submit(ctx context.Context, cfg domain.AIConfig, prompt domain.RenderedPrompt) (domain.AIResponse, error) {
	if err := requireKey(c.Name(), cfg.APIKey); err != nil {
		return domain.AIResponse{}, err
	}

	model := cfg.Model
	if model == "" {
		model = claudeDefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = claudeDefaultMaxTokens
	}

	request := map[string]any{
		"model":      model,
		"system":     prompt.System,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt.User},
		},
	}
	if cfg.Temperature > 0 {
		request["temperature"] = cfg.Temperature
	}

	headers := map[string]string{
		"x-api-key":         cfg.APIKey,
		"anthropic-version": claudeAPIVersion,
	}
	body, err := postJSON(ctx, c.Name(), c.hc, c.rl, c.base+"/messages", headers, request)
	if err != nil {
		return domain.AIResponse{}, err
	}

	var resp struct {
		Model   string `json:"model"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.AIResponse{}, &domain.ProviderError{
			Provider: c.Name(), Err: domain.ErrMalformedResponse, Message: "decode completion", Underlying: err,
		}
	}
	if len(resp.Content) == 0 {
		return domain.AIResponse{}, &domain.ProviderError{
			Provider: c.Name(), Err: domain.ErrMalformedResponse, Message: "no content in completion",
		}
	}
	if resp.Model != "" {
		model = resp.Model
	}
	return parseResponse(c.Name(), model, resp.Content[0].Text)
}
