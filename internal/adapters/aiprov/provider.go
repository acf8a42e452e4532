// Package aiprov holds the per-vendor LLM adapters behind the
// domain.AIProvider capability. Adding a vendor means one new variant here
// plus a case in the factory; call sites never branch on provider strings.
package aiprov

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"review_pulse/internal/domain"
)

// Options tune the shared HTTP behavior of every adapter. BaseURL overrides
// the vendor endpoint (tests point it at an httptest server).
type Options struct {
	BaseURL string
	Timeout time.Duration // mandatory per-call bound; defaulted when zero
	RPS     int           // client-side rate limit
}

const defaultTimeout = 30 * time.Second

func (o Options) withDefaults(vendorBase string) Options {
	if o.BaseURL == "" {
		o.BaseURL = vendorBase
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	return o
}

func (o Options) client() *http.Client {
	return &http.Client{Timeout: o.Timeout}
}

func (o Options) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(o.RPS), o.RPS)
}

// New builds the adapter for a provider type. The switch is the closed
// variant set; an unknown type is a caller bug surfaced as an error.
func New(p domain.ProviderType, opts Options) (domain.AIProvider, error) {
	switch p {
	case domain.ProviderOpenAI:
		return NewOpenAI(opts), nil
	case domain.ProviderClaude:
		return NewClaude(opts), nil
	case domain.ProviderGemini:
		return NewGemini(opts), nil
	default:
		return nil, fmt.Errorf("aiprov: unsupported provider %q", p)
	}
}
