package app

import (
	"time"

	"review_pulse/internal/domain"
)

// snapshotPeriod aggregates the metrics-only subset for one window: average
// rating, review count, sentiment distribution, and the observed date span.
func snapshotPeriod(reviews []domain.Review) domain.PeriodSnapshot {
	var s domain.PeriodSnapshot
	if len(reviews) == 0 {
		return s
	}

	var sum float64
	var start, end time.Time
	for _, r := range reviews {
		sum += float64(r.Rating)
		switch sentimentLabel(r.Rating) {
		case domain.SentimentPositive:
			s.Sentiment.Positive++
		case domain.SentimentNeutral:
			s.Sentiment.Neutral++
		default:
			s.Sentiment.Negative++
		}
		if start.IsZero() || r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if r.Timestamp.After(end) {
			end = r.Timestamp
		}
	}
	s.StartDate = start
	s.EndDate = end
	s.ReviewCount = len(reviews)
	s.AvgRating = sum / float64(len(reviews))
	return s
}

// positiveShare is the comparator's scalar sentiment measure: the fraction of
// positive reviews in the window, 0 for an empty window.
func positiveShare(s domain.PeriodSnapshot) float64 {
	if s.ReviewCount == 0 {
		return 0
	}
	return float64(s.Sentiment.Positive) / float64(s.ReviewCount)
}

// Compare aggregates both windows independently and computes the deltas by
// direct subtraction. ReviewCountPctChange is 0 when the previous window is
// empty, never Inf or NaN. Window disjointness is the caller's concern.
func Compare(prev, current []domain.Review) domain.PeriodComparison {
	p := snapshotPeriod(prev)
	c := snapshotPeriod(current)

	changes := domain.PeriodChanges{
		RatingChange:      c.AvgRating - p.AvgRating,
		ReviewCountChange: c.ReviewCount - p.ReviewCount,
		SentimentChange:   positiveShare(c) - positiveShare(p),
	}
	if p.ReviewCount > 0 {
		changes.ReviewCountPctChange = float64(c.ReviewCount-p.ReviewCount) / float64(p.ReviewCount) * 100
	}

	return domain.PeriodComparison{Previous: p, Current: c, Changes: changes}
}
