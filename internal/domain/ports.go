package domain

import (
	"context"
	"time"
)

// ReviewRepository is the storage boundary the engine reads reviews from and
// writes analysis snapshots to. The engine itself holds no state per request.
type ReviewRepository interface {
	// Write paths
	UpsertBusiness(ctx context.Context, b Business) error
	UpsertReviews(ctx context.Context, rs []Review) error
	SaveSnapshot(ctx context.Context, s AnalysisSnapshot) error

	// Read paths
	GetBusiness(ctx context.Context, id int64) (Business, error)
	ListBusinessIDs(ctx context.Context) ([]int64, error)
	ListReviews(ctx context.Context, businessID int64, from, to time.Time) ([]Review, error)
	LatestSnapshot(ctx context.Context, businessID int64) (AnalysisSnapshot, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// AIProvider is the capability boundary over one LLM vendor. Submit must
// honor ctx cancellation and bound the call with its own wall-clock timeout.
type AIProvider interface {
	Name() string
	Submit(ctx context.Context, cfg AIConfig, prompt RenderedPrompt) (AIResponse, error)
}
