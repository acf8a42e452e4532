package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"review_pulse/internal/domain"
	"review_pulse/internal/prompts"
)

// ProviderFactory builds the adapter for a provider type per request; the
// engine holds no process-wide provider selection.
type ProviderFactory func(domain.ProviderType) (domain.AIProvider, error)

// RetryPolicy is passed in explicitly so retry behavior is uniformly
// testable and tunable rather than hard-coded per provider.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultRetryPolicy: a single retry after a fixed delay.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 1, Delay: 1500 * time.Millisecond}

type Assembler struct {
	providers ProviderFactory
	policy    RetryPolicy
}

func NewAssembler(f ProviderFactory, policy RetryPolicy) *Assembler {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &Assembler{providers: f, policy: policy}
}

// Recommend renders the task template for the context, dispatches to the
// configured provider, and merges the parsed result with the statistical
// analysis. Template failures are fatal to the request and returned as
// errors; provider failures after retry yield a degraded statistics-only
// result so the caller can still display the analysis. The analysis is
// never mutated.
func (a *Assembler) Recommend(ctx context.Context, bctx domain.BusinessContext, cfg domain.AIConfig, task domain.Task) (domain.Recommendation, error) {
	tpl, err := prompts.Lookup(bctx.Business.Type, task)
	if err != nil {
		return domain.Recommendation{}, err
	}
	rendered, err := prompts.Render(tpl, prompts.Values(bctx))
	if err != nil {
		return domain.Recommendation{}, err
	}

	if !cfg.Provider.Valid() {
		return domain.Recommendation{}, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	provider, err := a.providers(cfg.Provider)
	if err != nil {
		return domain.Recommendation{}, err
	}

	out := domain.Recommendation{Context: bctx}

	resp, err := a.submitWithRetry(ctx, provider, cfg, rendered)
	if err != nil {
		log.Warn().Err(err).
			Str("provider", provider.Name()).
			Str("task", string(task)).
			Msg("recommendation degraded to statistics only")
		out.Degraded = true
		out.FailureReason = err.Error()
		return out, nil
	}

	out.AI = &resp
	return out, nil
}

// submitWithRetry retries only throttling and timeouts, once per policy,
// after a fixed delay (or the vendor's Retry-After when longer). Everything
// else surfaces immediately.
func (a *Assembler) submitWithRetry(ctx context.Context, p domain.AIProvider, cfg domain.AIConfig, prompt domain.RenderedPrompt) (domain.AIResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= a.policy.MaxRetries; attempt++ {
		resp, err := p.Submit(ctx, cfg, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !domain.Retryable(err) || attempt == a.policy.MaxRetries {
			break
		}

		delay := a.policy.Delay
		if pe, ok := err.(*domain.ProviderError); ok && pe.RetryAfter > delay {
			delay = pe.RetryAfter
		}
		log.Debug().Err(err).Dur("delay", delay).Msg("retrying provider call")
		if !sleepCtx(ctx, delay) {
			return domain.AIResponse{}, ctx.Err()
		}
	}
	return domain.AIResponse{}, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
