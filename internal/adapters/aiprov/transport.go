package aiprov

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_pulse/internal/adapters/observability"
	"review_pulse/internal/domain"
)

// postJSON performs one vendor call with client-side rate limiting and the
// adapter's wall-clock timeout, mapping every failure onto the shared
// taxonomy. Cancelling ctx abandons the in-flight call; the http.Client owns
// the connection and closes it.
func postJSON(ctx context.Context, name string, hc *http.Client, rl *rate.Limiter, url string, headers map[string]string, body any) ([]byte, error) {
	if err := rl.Wait(ctx); err != nil {
		return nil, timeoutOrCancel(name, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &domain.ProviderError{Provider: name, Err: domain.ErrMalformedResponse, Message: "marshal request body", Underlying: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.ProviderError{Provider: name, Err: domain.ErrProviderUnavailable, Message: "build request", Underlying: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "review-pulse/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		observability.ObserveProvider(name, 0, time.Since(start))
		return nil, timeoutOrCancel(name, err)
	}
	defer resp.Body.Close()
	observability.ObserveProvider(name, resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, timeoutOrCancel(name, err)
	}

	if resp.StatusCode >= 400 {
		return nil, classifyStatus(name, resp, respBody)
	}
	return respBody, nil
}

// timeoutOrCancel separates deadline expiry from other transport failures.
// Caller cancellation is not a provider failure and passes through untouched
// so errors.Is(err, context.Canceled) still holds upstream.
func timeoutOrCancel(name string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var kind error = domain.ErrProviderUnavailable
	if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
		kind = domain.ErrTimeout
	}
	return &domain.ProviderError{Provider: name, Err: kind, Message: "request failed", Underlying: err}
}

func isClientTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

func classifyStatus(name string, resp *http.Response, body []byte) *domain.ProviderError {
	msg := vendorErrorMessage(body)
	pe := &domain.ProviderError{Provider: name, StatusCode: resp.StatusCode, Message: msg}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		pe.Err = domain.ErrAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		pe.Err = domain.ErrRateLimit
		pe.RetryAfter = retryAfter(resp)
	case resp.StatusCode >= 500:
		pe.Err = domain.ErrProviderUnavailable
	default:
		pe.Err = domain.ErrProviderUnavailable
	}
	if pe.Message == "" {
		pe.Message = "status " + strconv.Itoa(resp.StatusCode)
	}
	return pe
}

// vendorErrorMessage digs the human-readable message out of the common error
// envelopes ({"error":{"message":...}} or {"error":"..."}).
func vendorErrorMessage(body []byte) string {
	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error.Message != "" {
		return wrapped.Error.Message
	}
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}
	return ""
}

// retryAfter parses Retry-After in either seconds or HTTP-date form.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// requireKey is the shared no-network auth precheck.
func requireKey(name, key string) error {
	if strings.TrimSpace(key) == "" {
		return &domain.ProviderError{Provider: name, Err: domain.ErrAuth, Message: "API key is required"}
	}
	return nil
}
