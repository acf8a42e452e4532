package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "review_pulse/internal/adapters/redis"
	"review_pulse/internal/domain"
)

func newCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0)
}

func TestCache_RoundTrip(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	in := domain.AnalysisSnapshot{BusinessID: 42, ReviewCount: 3}
	in.Analysis.Sentiment.Breakdown = domain.SentimentBreakdown{Positive: 2, Negative: 1}

	if err := c.Set(ctx, "analysis:42", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out domain.AnalysisSnapshot
	ok, err := c.Get(ctx, "analysis:42", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if out.BusinessID != 42 || out.ReviewCount != 3 || out.Analysis.Sentiment.Breakdown.Positive != 2 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestCache_MissIsNotAnError(t *testing.T) {
	c := newCache(t)

	var out domain.AnalysisSnapshot
	ok, err := c.Get(context.Background(), "analysis:nope", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestCache_Del(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", map[string]int{"a": 1}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}

	var out map[string]int
	ok, err := c.Get(ctx, "k", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after delete, ok=%v err=%v", ok, err)
	}
}

func TestCache_TTLExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var out string
	ok, err := c.Get(ctx, "k", &out)
	if err != nil || ok {
		t.Fatalf("expected expiry, ok=%v err=%v", ok, err)
	}
}
