package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"review_pulse/internal/domain"
)

// AnalysisService serves repo-backed analyses with a read-through cache.
type AnalysisService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewAnalysisService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *AnalysisService {
	return &AnalysisService{repo: r, cache: c, cacheTTL: ttl}
}

func cacheKey(businessID int64) string { return fmt.Sprintf("analysis:%d", businessID) }

// BusinessAnalysis returns the current analysis for a stored business,
// computing it from the stored reviews on a cache miss. When the business
// has no stored reviews the last persisted snapshot (from the batch
// analyzer) is served instead, if one exists.
func (s *AnalysisService) BusinessAnalysis(ctx context.Context, businessID int64) (domain.AnalysisSnapshot, error) {
	key := cacheKey(businessID)
	var snap domain.AnalysisSnapshot
	if ok, _ := s.cache.Get(ctx, key, &snap); ok {
		return snap, nil
	}

	if _, err := s.repo.GetBusiness(ctx, businessID); err != nil {
		return domain.AnalysisSnapshot{}, err
	}

	reviews, err := s.repo.ListReviews(ctx, businessID, time.Time{}, time.Time{})
	if err != nil {
		return domain.AnalysisSnapshot{}, err
	}
	if len(reviews) == 0 {
		stored, err := s.repo.LatestSnapshot(ctx, businessID)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.AnalysisSnapshot{}, err
		}
		// no reviews, no snapshot: an empty analysis, not an error
	}

	snap = buildSnapshot(businessID, reviews)

	// size guard before caching, same policy as any JSON value we cache
	if b, _ := json.Marshal(snap); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, snap, int(s.cacheTTL.Seconds()))
	}
	return snap, nil
}

// Recompute rebuilds and persists one business's snapshot and drops the
// cached copy. The batch analyzer calls this per business.
func (s *AnalysisService) Recompute(ctx context.Context, businessID int64) error {
	reviews, err := s.repo.ListReviews(ctx, businessID, time.Time{}, time.Time{})
	if err != nil {
		return fmt.Errorf("list reviews for %d: %w", businessID, err)
	}

	snap := buildSnapshot(businessID, reviews)
	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot for %d: %w", businessID, err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, cacheKey(businessID))
	}
	return nil
}

func buildSnapshot(businessID int64, reviews []domain.Review) domain.AnalysisSnapshot {
	return domain.AnalysisSnapshot{
		BusinessID:  businessID,
		ComputedAt:  time.Now().UTC(),
		ReviewCount: len(reviews),
		Analysis:    Aggregate(reviews),
		Enhanced:    AggregateEnhanced(reviews),
	}
}
