package aiprov

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"review_pulse/internal/domain"
)

const (
	openAIBase         = "https://api.openai.com/v1"
	openAIDefaultModel = "gpt-4o-mini"
)

type OpenAI struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func NewOpenAI(opts Options) *OpenAI {
	opts = opts.withDefaults(openAIBase)
	return &OpenAI{base: opts.BaseURL, hc: opts.client(), rl: opts.limiter()}
}

func (o *OpenAI) Name() string { return string(domain.ProviderOpenAI) }

func (o *OpenAI) Submit(ctx context.Context, cfg domain.AIConfig, prompt domain.RenderedPrompt) (domain.AIResponse, error) {
	if err := requireKey(o.Name(), cfg.APIKey); err != nil {
		return domain.AIResponse{}, err
	}

	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}

	request := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": prompt.System},
			{"role": "user", "content": prompt.User},
		},
	}
	if cfg.Temperature > 0 {
		request["temperature"] = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		request["max_tokens"] = cfg.MaxTokens
	}

	headers := map[string]string{"Authorization": "Bearer " + cfg.APIKey}
	body, err := postJSON(ctx, o.Name(), o.hc, o.rl, o.base+"/chat/completions", headers, request)
	if err != nil {
		return domain.AIResponse{}, err
	}

	var resp struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.AIResponse{}, &domain.ProviderError{
			Provider: o.Name(), Err: domain.ErrMalformedResponse, Message: "decode completion", Underlying: err,
		}
	}
	if len(resp.Choices) == 0 {
		return domain.AIResponse{}, &domain.ProviderError{
			Provider: o.Name(), Err: domain.ErrMalformedResponse, Message: "no choices in completion",
		}
	}
	if resp.Model != "" {
		model = resp.Model
	}
	return parseResponse(o.Name(), model, resp.Choices[0].Message.Content)
}
