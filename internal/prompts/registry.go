// Package prompts holds the business-type-specific prompt templates and
// their strict renderer. Templates are immutable configuration data keyed by
// (businessType, task); unknown combinations fail loudly rather than falling
// back to an ill-fitted prompt against a billed API.
package prompts

import (
	"fmt"
	"regexp"
	"strings"

	"review_pulse/internal/domain"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Lookup selects the template for a business type and task.
func Lookup(businessType string, task domain.Task) (domain.PromptTemplate, error) {
	system, ok := systemPrompts[strings.ToLower(businessType)]
	if !ok {
		return domain.PromptTemplate{}, fmt.Errorf("%w: type=%q task=%q", domain.ErrUnknownTemplate, businessType, task)
	}
	user, ok := userPrompts[task]
	if !ok {
		return domain.PromptTemplate{}, fmt.Errorf("%w: type=%q task=%q", domain.ErrUnknownTemplate, businessType, task)
	}
	return domain.PromptTemplate{
		System:    system,
		User:      user,
		Variables: taskVariables[task],
	}, nil
}

// Render substitutes {{name}} placeholders. It fails when a declared
// variable has no value, and again when the rendered text still carries an
// unresolved placeholder (a template/variables drift, caught before any
// provider is billed).
func Render(tpl domain.PromptTemplate, values map[string]string) (domain.RenderedPrompt, error) {
	for _, v := range tpl.Variables {
		if _, ok := values[v]; !ok {
			return domain.RenderedPrompt{}, &domain.TemplateError{Variable: v, Reason: "no value supplied"}
		}
	}

	sub := func(text string) string {
		return placeholderRe.ReplaceAllStringFunc(text, func(ph string) string {
			name := placeholderRe.FindStringSubmatch(ph)[1]
			if v, ok := values[name]; ok {
				return v
			}
			return ph
		})
	}

	out := domain.RenderedPrompt{System: sub(tpl.System), User: sub(tpl.User)}
	for _, text := range []string{out.System, out.User} {
		if m := placeholderRe.FindStringSubmatch(text); m != nil {
			return domain.RenderedPrompt{}, &domain.TemplateError{Variable: m[1], Reason: "unresolved placeholder after render"}
		}
	}
	return out, nil
}

// Values flattens a BusinessContext into the substitution map the templates
// expect. Collections render as short comma-joined summaries; the model gets
// digests, not raw dumps.
func Values(bctx domain.BusinessContext) map[string]string {
	a := bctx.Analysis

	themes := make([]string, 0, len(a.Themes))
	for i, t := range a.Themes {
		if i == 5 {
			break
		}
		themes = append(themes, fmt.Sprintf("%s (%d, %s)", t.Name, t.Frequency, t.Sentiment))
	}
	pains := make([]string, 0, len(a.PainPoints))
	for _, p := range a.PainPoints {
		pains = append(pains, fmt.Sprintf("%s (%s severity, %d mentions)", p.Issue, p.Severity, p.Frequency))
	}
	strengths := make([]string, 0, len(a.Strengths))
	for _, s := range a.Strengths {
		strengths = append(strengths, fmt.Sprintf("%s (%s impact, %d mentions)", s.Aspect, s.Impact, s.Mentions))
	}

	trends := "insufficient history"
	if t := bctx.HistoricalTrends; t != nil {
		trends = fmt.Sprintf("rating %s, volume %s, sentiment %s", t.RatingTrend, t.VolumeTrend, t.SentimentTrend)
	}

	return map[string]string{
		"business_name":   bctx.Business.Name,
		"business_type":   bctx.Business.Type,
		"avg_rating":      fmt.Sprintf("%.1f", bctx.Metrics.AvgRating),
		"total_reviews":   fmt.Sprintf("%d", bctx.Metrics.TotalReviews),
		"monthly_reviews": fmt.Sprintf("%.1f", bctx.Metrics.MonthlyReviews),
		"sentiment_summary": fmt.Sprintf("%d positive / %d neutral / %d negative (overall %.2f)",
			a.Sentiment.Breakdown.Positive, a.Sentiment.Breakdown.Neutral,
			a.Sentiment.Breakdown.Negative, a.Sentiment.Overall),
		"top_themes":  joinOr(themes, "none detected"),
		"pain_points": joinOr(pains, "none detected"),
		"strengths":   joinOr(strengths, "none detected"),
		"trends":      trends,
	}
}

func joinOr(parts []string, empty string) string {
	if len(parts) == 0 {
		return empty
	}
	return strings.Join(parts, "; ")
}
