package app

import (
	"time"

	"review_pulse/internal/domain"
)

// trendDeadband: relative changes under 2% classify as stable.
const trendDeadband = 0.02

// BuildContext composes the aggregate root for one analysis request. Pure
// composition: metrics from the review set, the aggregated analysis attached
// as-is, response rate supplied externally (reply data is outside this
// engine). Trends are only attached when the window spans enough history to
// split in half.
func BuildContext(business domain.Business, reviews []domain.Review, analysis domain.ReviewAnalysis, responseRate float64) domain.BusinessContext {
	bctx := domain.BusinessContext{
		Business: business,
		Analysis: analysis,
	}

	bctx.Metrics.TotalReviews = len(reviews)
	bctx.Metrics.ResponseRate = responseRate
	if len(reviews) == 0 {
		return bctx
	}

	var sum float64
	months := map[string]struct{}{}
	for _, r := range reviews {
		sum += float64(r.Rating)
		months[r.Timestamp.Format("2006-01")] = struct{}{}
	}
	bctx.Metrics.AvgRating = sum / float64(len(reviews))
	bctx.Metrics.MonthlyReviews = float64(len(reviews)) / float64(len(months))

	if len(months) >= 2 && len(reviews) >= 4 {
		bctx.HistoricalTrends = classifyTrends(reviews)
	}
	return bctx
}

// classifyTrends compares the older and newer half of a time-sorted review
// window against the deadband. Input order follows the normalizer's
// ascending-timestamp guarantee. Rating and sentiment are ratios, so the
// halves split at the count midpoint; volume splits the calendar span
// instead, since half-by-count always holds the two counts equal.
func classifyTrends(reviews []domain.Review) *domain.HistoricalTrends {
	half := len(reviews) / 2
	older := snapshotPeriod(reviews[:half])
	newer := snapshotPeriod(reviews[half:])

	return &domain.HistoricalTrends{
		RatingTrend:    direction(older.AvgRating, newer.AvgRating, domain.TrendImproving, domain.TrendDeclining),
		VolumeTrend:    volumeDirection(reviews),
		SentimentTrend: direction(positiveShare(older), positiveShare(newer), domain.TrendImproving, domain.TrendDeclining),
	}
}

// volumeDirection compares the mean reviews-per-month of the older and newer
// half of the calendar span, months with no reviews counting as zero.
func volumeDirection(reviews []domain.Review) string {
	counts := monthlyCounts(reviews)
	if len(counts) < 2 {
		return domain.TrendStable
	}
	half := len(counts) / 2
	return direction(meanInt(counts[:half]), meanInt(counts[half:]), domain.TrendIncreasing, domain.TrendDecreasing)
}

// monthlyCounts buckets a time-sorted review list into per-month counts over
// the full calendar span, first month to last, gaps included.
func monthlyCounts(reviews []domain.Review) []int {
	if len(reviews) == 0 {
		return nil
	}
	byMonth := map[string]int{}
	for _, r := range reviews {
		byMonth[r.Timestamp.Format("2006-01")]++
	}

	first := reviews[0].Timestamp
	last := reviews[len(reviews)-1].Timestamp
	cur := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)

	var counts []int
	for !cur.After(end) {
		counts = append(counts, byMonth[cur.Format("2006-01")])
		cur = cur.AddDate(0, 1, 0)
	}
	return counts
}

func meanInt(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

func direction(before, after float64, up, down string) string {
	if before == 0 {
		if after > 0 {
			return up
		}
		return domain.TrendStable
	}
	rel := (after - before) / before
	switch {
	case rel > trendDeadband:
		return up
	case rel < -trendDeadband:
		return down
	default:
		return domain.TrendStable
	}
}
