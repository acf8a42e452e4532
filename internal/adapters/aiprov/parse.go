package aiprov

import (
	"encoding/json"
	"strings"

	"review_pulse/internal/domain"
)

// parseResponse turns a vendor's free-form reply text into the canonical
// AIResponse. The prompts ask for a JSON object, so the happy path unwraps
// that (tolerating code fences and surrounding prose); a reply with no
// usable structure degrades to one-recommendation-per-line. Empty text is a
// malformed response.
//
// Confidence: taken from the model when supplied and within [0,1]; otherwise
// estimated from response completeness (more distinct recommendations, more
// confidence, capped at 0.9) and defaulted to 0.5 when unknowable.
func parseResponse(name, model, text string) (domain.AIResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.AIResponse{}, &domain.ProviderError{
			Provider: name, Err: domain.ErrMalformedResponse, Message: "empty completion",
		}
	}

	resp := domain.AIResponse{Provider: name, Model: model}

	var parsed struct {
		Recommendations []string `json:"recommendations"`
		Confidence      *float64 `json:"confidence"`
		Reasoning       string   `json:"reasoning"`
		Sources         []string `json:"sources"`
	}
	if obj := extractJSONObject(text); obj != "" && json.Unmarshal([]byte(obj), &parsed) == nil && len(parsed.Recommendations) > 0 {
		resp.Recommendations = parsed.Recommendations
		resp.Reasoning = parsed.Reasoning
		resp.Sources = parsed.Sources
		if parsed.Confidence != nil && *parsed.Confidence >= 0 && *parsed.Confidence <= 1 {
			resp.Confidence = *parsed.Confidence
		} else {
			resp.Confidence = estimateConfidence(len(resp.Recommendations))
		}
		return resp, nil
	}

	// Fallback: treat non-empty lines as recommendations.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•0123456789. "))
		if line != "" {
			resp.Recommendations = append(resp.Recommendations, line)
		}
	}
	if len(resp.Recommendations) == 0 {
		return domain.AIResponse{}, &domain.ProviderError{
			Provider: name, Err: domain.ErrMalformedResponse, Message: "no recommendations in completion",
		}
	}
	resp.Confidence = 0.5
	return resp, nil
}

// extractJSONObject returns the outermost {...} span of text, or "".
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func estimateConfidence(recs int) float64 {
	c := 0.4 + 0.1*float64(recs)
	if c > 0.9 {
		c = 0.9
	}
	if recs == 0 {
		c = 0.5
	}
	return c
}
