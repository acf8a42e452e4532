package aiprov

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"review_pulse/internal/domain"
)

const (
	geminiBase         = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel = "gemini-1.5-flash"
)

type Gemini struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func NewGemini(opts Options) *Gemini {
	opts = opts.withDefaults(geminiBase)
	return &Gemini{base: opts.BaseURL, hc: opts.client(), rl: opts.limiter()}
}

func (g *Gemini) Name() string { return string(domain.ProviderGemini) }

func (g *Gemini) Submit(ctx context.Context, cfg domain.AIConfig, prompt domain.RenderedPrompt) (domain.AIResponse, error) {
	if err := requireKey(g.Name(), cfg.APIKey); err != nil {
		return domain.AIResponse{}, err
	}

	model := cfg.Model
	if model == "" {
		model = geminiDefaultModel
	}

	genCfg := map[string]any{}
	if cfg.Temperature > 0 {
		genCfg["temperature"] = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		genCfg["maxOutputTokens"] = cfg.MaxTokens
	}

	request := map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]string{{"text": prompt.System}},
		},
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": prompt.User}}},
		},
	}
	if len(genCfg) > 0 {
		request["generationConfig"] = genCfg
	}

	// Gemini authenticates via query parameter, not a header.
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.base, model, cfg.APIKey)
	body, err := postJSON(ctx, g.Name(), g.hc, g.rl, url, nil, request)
	if err != nil {
		return domain.AIResponse{}, err
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.AIResponse{}, &domain.ProviderError{
			Provider: g.Name(), Err: domain.ErrMalformedResponse, Message: "decode completion", Underlying: err,
		}
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return domain.AIResponse{}, &domain.ProviderError{
			Provider: g.Name(), Err: domain.ErrMalformedResponse, Message: "no candidates in completion",
		}
	}
	return parseResponse(g.Name(), model, resp.Candidates[0].Content.Parts[0].Text)
}
