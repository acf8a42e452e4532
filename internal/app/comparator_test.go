package app_test

import (
	"math"
	"testing"

	"review_pulse/internal/app"
)

func TestCompare_RatingChangeExact(t *testing.T) {
	prev := ratingsFixture([]int{4, 4, 5})    // avg 4.333...
	current := ratingsFixture([]int{3, 3, 2}) // avg 2.666...

	got := app.Compare(prev, current)

	want := got.Current.AvgRating - got.Previous.AvgRating
	if math.Abs(got.Changes.RatingChange-want) > 1e-9 {
		t.Fatalf("ratingChange %f != %f", got.Changes.RatingChange, want)
	}
	if got.Changes.ReviewCountChange != 0 {
		t.Fatalf("countChange: %d", got.Changes.ReviewCountChange)
	}
	if got.Changes.SentimentChange >= 0 {
		t.Fatalf("sentiment should decline: %f", got.Changes.SentimentChange)
	}
}

func TestCompare_EmptyPreviousPeriodSentinel(t *testing.T) {
	current := ratingsFixture([]int{5, 4, 3, 4, 5})

	got := app.Compare(nil, current)

	if got.Previous.ReviewCount != 0 || got.Current.ReviewCount != 5 {
		t.Fatalf("counts: %+v", got)
	}
	if got.Changes.ReviewCountChange != 5 {
		t.Fatalf("countChange: %d", got.Changes.ReviewCountChange)
	}
	// zero-denominator guard: sentinel 0, never Inf/NaN
	if got.Changes.ReviewCountPctChange != 0 {
		t.Fatalf("pctChange sentinel: %f", got.Changes.ReviewCountPctChange)
	}
	if math.IsInf(got.Changes.ReviewCountPctChange, 0) || math.IsNaN(got.Changes.ReviewCountPctChange) {
		t.Fatalf("pctChange not finite")
	}
}

func TestCompare_PctChangeAndSpan(t *testing.T) {
	prev := ratingsFixture([]int{4, 4})          // 2 reviews
	current := ratingsFixture([]int{5, 5, 5, 5}) // 4 reviews

	got := app.Compare(prev, current)
	if math.Abs(got.Changes.ReviewCountPctChange-100) > 1e-9 {
		t.Fatalf("pctChange: %f", got.Changes.ReviewCountPctChange)
	}

	if got.Current.StartDate.IsZero() || got.Current.EndDate.Before(got.Current.StartDate) {
		t.Fatalf("span: %v..%v", got.Current.StartDate, got.Current.EndDate)
	}
	if got.Current.Sentiment.Positive != 4 {
		t.Fatalf("current sentiment: %+v", got.Current.Sentiment)
	}
}
