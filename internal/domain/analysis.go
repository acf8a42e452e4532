package domain

import "time"

// Sentiment labels and the fixed rating-threshold policy used when no text
// model is available: rating>=4 positive, ==3 neutral, <=2 negative.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Total is the number of reviews classified.
func (b SentimentBreakdown) Total() int { return b.Positive + b.Neutral + b.Negative }

type SentimentSummary struct {
	Overall   float64            `json:"overall"` // mean per-review score, -1..+1
	Breakdown SentimentBreakdown `json:"breakdown"`
}

type Theme struct {
	Name      string   `json:"name"`
	Frequency int      `json:"frequency"`
	Sentiment string   `json:"sentiment"` // majority vote, ties neutral
	Examples  []string `json:"examples"`
}

type PainPoint struct {
	Issue       string   `json:"issue"`
	Severity    string   `json:"severity"` // high|medium|low
	Frequency   int      `json:"frequency"`
	Suggestions []string `json:"suggestions"`
}

type Strength struct {
	Aspect   string `json:"aspect"`
	Mentions int    `json:"mentions"`
	Impact   string `json:"impact"` // high|medium|low
}

type CustomerSegment struct {
	Segment         string   `json:"segment"`
	Percentage      float64  `json:"percentage"`
	Characteristics []string `json:"characteristics"`
}

// ReviewAnalysis is the read-only statistical snapshot of one review set.
// Breakdown counts always sum to the number of reviews analyzed; segment
// percentages sum to <=100 modulo rounding.
type ReviewAnalysis struct {
	Sentiment        SentimentSummary  `json:"sentiment"`
	Themes           []Theme           `json:"themes"`
	PainPoints       []PainPoint       `json:"pain_points"`
	Strengths        []Strength        `json:"strengths"`
	CustomerSegments []CustomerSegment `json:"customer_segments"`
}

type DayOfWeekBucket struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type TimeOfDayBucket struct {
	Period string `json:"period"` // morning|afternoon|evening|night
	Count  int    `json:"count"`
}

type TemporalPatterns struct {
	DayOfWeek []DayOfWeekBucket `json:"day_of_week"` // always 7 buckets
	TimeOfDay []TimeOfDayBucket `json:"time_of_day"` // always 4 buckets
}

type TrendPoint struct {
	Period      string  `json:"period"` // YYYY-MM
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}

type ReviewCluster struct {
	Name      string   `json:"name"`
	Keywords  []string `json:"keywords"`
	Count     int      `json:"count"`
	Sentiment string   `json:"sentiment"`
}

type SeasonBucket struct {
	Season    string  `json:"season"` // winter|spring|summer|autumn
	Count     int     `json:"count"`
	AvgRating float64 `json:"avg_rating"` // 0 when the bucket is empty
}

// EnhancedAnalysis is the supplementary temporal view over the same review
// set. It references no Review and owns none.
type EnhancedAnalysis struct {
	TemporalPatterns TemporalPatterns `json:"temporal_patterns"`
	HistoricalTrends []TrendPoint     `json:"historical_trends"`
	ReviewClusters   []ReviewCluster  `json:"review_clusters"`
	SeasonalAnalysis []SeasonBucket   `json:"seasonal_analysis"`
	Insights         []string         `json:"insights"`
}

type BusinessMetrics struct {
	AvgRating      float64 `json:"avg_rating"`
	TotalReviews   int     `json:"total_reviews"`
	ResponseRate   float64 `json:"response_rate"`
	MonthlyReviews float64 `json:"monthly_reviews"` // count / distinct months spanned
}

// Trend direction labels for historical trends.
const (
	TrendImproving  = "improving"
	TrendDeclining  = "declining"
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

type HistoricalTrends struct {
	RatingTrend    string `json:"rating_trend"`    // improving|stable|declining
	VolumeTrend    string `json:"volume_trend"`    // increasing|stable|decreasing
	SentimentTrend string `json:"sentiment_trend"` // improving|stable|declining
}

// BusinessContext is the aggregate root handed to the recommendation step.
// Built fresh per analysis request; the engine never persists it.
type BusinessContext struct {
	Business         Business          `json:"business"`
	Metrics          BusinessMetrics   `json:"metrics"`
	Analysis         ReviewAnalysis    `json:"analysis"`
	Enhanced         *EnhancedAnalysis `json:"enhanced,omitempty"`
	HistoricalTrends *HistoricalTrends `json:"historical_trends,omitempty"`
}

type PeriodSnapshot struct {
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	AvgRating   float64            `json:"avg_rating"`
	ReviewCount int                `json:"review_count"`
	Sentiment   SentimentBreakdown `json:"sentiment_distribution"`
}

type PeriodChanges struct {
	RatingChange         float64 `json:"rating_change"`
	ReviewCountChange    int     `json:"review_count_change"`
	ReviewCountPctChange float64 `json:"review_count_percent_change"` // 0 when prev count is 0
	SentimentChange      float64 `json:"sentiment_change"`
}

// PeriodComparison holds two aggregated windows plus their deltas. Window
// disjointness is the caller's responsibility and is not validated here.
type PeriodComparison struct {
	Previous PeriodSnapshot `json:"previous_period"`
	Current  PeriodSnapshot `json:"current_period"`
	Changes  PeriodChanges  `json:"changes"`
}

// AnalysisSnapshot is a persisted aggregation result for one business,
// produced by the batch analyzer and served by the read API.
type AnalysisSnapshot struct {
	BusinessID  int64            `json:"business_id"`
	ComputedAt  time.Time        `json:"computed_at"`
	ReviewCount int              `json:"review_count"`
	Analysis    ReviewAnalysis   `json:"analysis"`
	Enhanced    EnhancedAnalysis `json:"enhanced"`
}
