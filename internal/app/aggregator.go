package app

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"review_pulse/internal/domain"
)

/********** sentiment policy **********/

// Fixed rating-threshold classification, the deterministic fallback when no
// text-sentiment model is available.
func sentimentLabel(rating int) string {
	switch {
	case rating >= 4:
		return domain.SentimentPositive
	case rating == 3:
		return domain.SentimentNeutral
	default:
		return domain.SentimentNegative
	}
}

func sentimentScore(rating int) float64 {
	switch sentimentLabel(rating) {
	case domain.SentimentPositive:
		return 1
	case domain.SentimentNegative:
		return -1
	default:
		return 0
	}
}

/********** theme lexicon (single source of truth) **********/

// Keyword lexicon for theme extraction. Slice, not map: aggregation must be
// deterministic, so iteration order is fixed.
var themeLexicon = []struct {
	Name     string
	Keywords []string
}{
	{"service", []string{"service", "serve", "helpful", "attentive", "rude", "ignored"}},
	{"staff", []string{"staff", "employee", "waiter", "waitress", "manager", "team"}},
	{"quality", []string{"quality", "fresh", "stale", "broken", "excellent", "poor", "taste", "delicious"}},
	{"price", []string{"price", "expensive", "cheap", "value", "overpriced", "affordable", "cost"}},
	{"cleanliness", []string{"clean", "dirty", "spotless", "filthy", "hygiene", "mess"}},
	{"wait time", []string{"wait", "slow", "fast", "quick", "queue", "delay", "line"}},
	{"atmosphere", []string{"atmosphere", "ambiance", "ambience", "cozy", "noisy", "loud", "music", "decor"}},
	{"location", []string{"location", "parking", "convenient", "accessible", "far", "nearby"}},
}

var themeSuggestions = map[string][]string{
	"service":     {"review service scripts and escalation paths", "collect staff feedback on recurring complaints"},
	"staff":       {"schedule refresher training", "recognize staff praised by name in reviews"},
	"quality":     {"audit suppliers and batch consistency", "spot-check items called out in negative reviews"},
	"price":       {"benchmark pricing against nearby competitors", "introduce a value option or bundle"},
	"cleanliness": {"increase cleaning rotation frequency", "add a visible cleanliness checklist"},
	"wait time":   {"measure peak-hour throughput", "add staffing or self-service during peaks"},
	"atmosphere":  {"review noise levels and seating layout", "refresh decor in low-rated areas"},
	"location":    {"improve signage and directions", "publish parking guidance"},
}

/********** aggregation **********/

// Aggregate computes the statistical snapshot for one review set. Empty
// input yields a zero-valued analysis with empty collections, not an error.
// Deterministic: identical input always yields identical output.
func Aggregate(reviews []domain.Review) domain.ReviewAnalysis {
	out := domain.ReviewAnalysis{
		Themes:           []domain.Theme{},
		PainPoints:       []domain.PainPoint{},
		Strengths:        []domain.Strength{},
		CustomerSegments: []domain.CustomerSegment{},
	}
	if len(reviews) == 0 {
		return out
	}

	var scoreSum float64
	for _, r := range reviews {
		switch sentimentLabel(r.Rating) {
		case domain.SentimentPositive:
			out.Sentiment.Breakdown.Positive++
		case domain.SentimentNeutral:
			out.Sentiment.Breakdown.Neutral++
		default:
			out.Sentiment.Breakdown.Negative++
		}
		scoreSum += sentimentScore(r.Rating)
	}
	out.Sentiment.Overall = scoreSum / float64(len(reviews))

	out.Themes = extractThemes(reviews)
	out.PainPoints, out.Strengths = splitThemes(out.Themes)
	out.CustomerSegments = segmentCustomers(reviews)
	return out
}

// extractThemes groups reviews by lexicon keyword hits. Frequency counts
// reviews touching the theme; sentiment is the majority vote of the members,
// ties resolving to neutral.
func extractThemes(reviews []domain.Review) []domain.Theme {
	themes := make([]domain.Theme, 0, len(themeLexicon))
	for _, entry := range themeLexicon {
		var pos, neu, neg int
		var examples []string
		for _, r := range reviews {
			if !mentionsAny(r.Text, entry.Keywords) {
				continue
			}
			switch sentimentLabel(r.Rating) {
			case domain.SentimentPositive:
				pos++
			case domain.SentimentNeutral:
				neu++
			default:
				neg++
			}
			if len(examples) < 3 {
				examples = append(examples, snippet(r.Text, 120))
			}
		}
		freq := pos + neu + neg
		if freq == 0 {
			continue
		}
		themes = append(themes, domain.Theme{
			Name:      entry.Name,
			Frequency: freq,
			Sentiment: majority(pos, neu, neg),
			Examples:  examples,
		})
	}
	sort.SliceStable(themes, func(i, j int) bool {
		if themes[i].Frequency != themes[j].Frequency {
			return themes[i].Frequency > themes[j].Frequency
		}
		return themes[i].Name < themes[j].Name
	})
	return themes
}

func mentionsAny(text string, keywords []string) bool {
	low := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}

func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	// back off to a rune boundary before cutting
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, ' '); i > max/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

func majority(pos, neu, neg int) string {
	if pos > neu && pos > neg {
		return domain.SentimentPositive
	}
	if neg > neu && neg > pos {
		return domain.SentimentNegative
	}
	return domain.SentimentNeutral
}

// splitThemes derives pain points from negative-majority themes and
// strengths from positive-majority ones. Severity/impact buckets by theme
// frequency against the top-quartile and median of observed frequencies.
func splitThemes(themes []domain.Theme) ([]domain.PainPoint, []domain.Strength) {
	pains := []domain.PainPoint{}
	strengths := []domain.Strength{}
	if len(themes) == 0 {
		return pains, strengths
	}

	freqs := make([]int, len(themes))
	for i, t := range themes {
		freqs[i] = t.Frequency
	}
	sort.Ints(freqs)
	high := percentile(freqs, 0.75)
	mid := percentile(freqs, 0.50)

	bucket := func(freq int) string {
		switch {
		case freq >= high:
			return "high"
		case freq >= mid:
			return "medium"
		default:
			return "low"
		}
	}

	for _, t := range themes {
		switch t.Sentiment {
		case domain.SentimentNegative:
			pains = append(pains, domain.PainPoint{
				Issue:       t.Name,
				Severity:    bucket(t.Frequency),
				Frequency:   t.Frequency,
				Suggestions: themeSuggestions[t.Name],
			})
		case domain.SentimentPositive:
			strengths = append(strengths, domain.Strength{
				Aspect:   t.Name,
				Mentions: t.Frequency,
				Impact:   bucket(t.Frequency),
			})
		}
	}
	return pains, strengths
}

// percentile over a sorted int slice, nearest-rank.
func percentile(sorted []int, p float64) int {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// segmentCustomers bands reviewers by rating. Percentages are rounded to one
// decimal so their sum stays within rounding tolerance of 100.
func segmentCustomers(reviews []domain.Review) []domain.CustomerSegment {
	bands := []struct {
		Segment         string
		Match           func(int) bool
		Characteristics []string
	}{
		{"promoters", func(r int) bool { return r == 5 }, []string{"enthusiastic", "likely to refer others"}},
		{"satisfied", func(r int) bool { return r == 4 }, []string{"content", "receptive to upsell"}},
		{"passives", func(r int) bool { return r == 3 }, []string{"indifferent", "at risk of churn"}},
		{"detractors", func(r int) bool { return r <= 2 }, []string{"dissatisfied", "churn and reputation risk"}},
	}

	total := len(reviews)
	out := make([]domain.CustomerSegment, 0, len(bands))
	for _, b := range bands {
		count := 0
		for _, r := range reviews {
			if b.Match(r.Rating) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		out = append(out, domain.CustomerSegment{
			Segment:         b.Segment,
			Percentage:      math.Floor(float64(count)/float64(total)*1000) / 10,
			Characteristics: b.Characteristics,
		})
	}
	return out
}

/********** enhanced (temporal) view **********/

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var timeOfDayBuckets = []struct {
	Period   string
	From, To int // hour range, inclusive; wraps at midnight for night
}{
	{"morning", 5, 11},
	{"afternoon", 12, 16},
	{"evening", 17, 20},
	{"night", 21, 4},
}

func seasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

var seasonOrder = []string{"winter", "spring", "summer", "autumn"}

// AggregateEnhanced computes the supplementary temporal/seasonal view over
// the same review set. Zero buckets are still emitted with count 0; an empty
// seasonal bucket carries AvgRating 0.
func AggregateEnhanced(reviews []domain.Review) domain.EnhancedAnalysis {
	out := domain.EnhancedAnalysis{
		HistoricalTrends: []domain.TrendPoint{},
		ReviewClusters:   []domain.ReviewCluster{},
		Insights:         []string{},
	}

	// Day-of-week: always 7 buckets.
	dow := make([]int, 7)
	for _, r := range reviews {
		dow[int(r.Timestamp.Weekday())]++
	}
	for i, name := range dayNames {
		out.TemporalPatterns.DayOfWeek = append(out.TemporalPatterns.DayOfWeek,
			domain.DayOfWeekBucket{Day: name, Count: dow[i]})
	}

	// Time-of-day: always 4 buckets, night wraps midnight.
	for _, b := range timeOfDayBuckets {
		count := 0
		for _, r := range reviews {
			h := r.Timestamp.Hour()
			in := false
			if b.From <= b.To {
				in = h >= b.From && h <= b.To
			} else {
				in = h >= b.From || h <= b.To
			}
			if in {
				count++
			}
		}
		out.TemporalPatterns.TimeOfDay = append(out.TemporalPatterns.TimeOfDay,
			domain.TimeOfDayBucket{Period: b.Period, Count: count})
	}

	// Seasonal: fixed 4-bucket mapping, emitted in calendar order.
	type acc struct {
		count int
		sum   float64
	}
	seasons := map[string]*acc{}
	for _, s := range seasonOrder {
		seasons[s] = &acc{}
	}
	for _, r := range reviews {
		a := seasons[seasonOf(r.Timestamp.Month())]
		a.count++
		a.sum += float64(r.Rating)
	}
	for _, s := range seasonOrder {
		a := seasons[s]
		avg := 0.0
		if a.count > 0 {
			avg = a.sum / float64(a.count)
		}
		out.SeasonalAnalysis = append(out.SeasonalAnalysis,
			domain.SeasonBucket{Season: s, Count: a.count, AvgRating: avg})
	}

	// Monthly trend points, oldest first. Input is already time-sorted but
	// grouping keys still need an explicit order.
	months := map[string]*acc{}
	var monthKeys []string
	for _, r := range reviews {
		k := r.Timestamp.Format("2006-01")
		if _, ok := months[k]; !ok {
			months[k] = &acc{}
			monthKeys = append(monthKeys, k)
		}
		months[k].count++
		months[k].sum += float64(r.Rating)
	}
	sort.Strings(monthKeys)
	for _, k := range monthKeys {
		a := months[k]
		out.HistoricalTrends = append(out.HistoricalTrends, domain.TrendPoint{
			Period:      k,
			AvgRating:   a.sum / float64(a.count),
			ReviewCount: a.count,
		})
	}

	// Clusters reuse the theme machinery, keeping the keyword list visible.
	for _, t := range extractThemes(reviews) {
		var kws []string
		for _, entry := range themeLexicon {
			if entry.Name == t.Name {
				kws = entry.Keywords
				break
			}
		}
		out.ReviewClusters = append(out.ReviewClusters, domain.ReviewCluster{
			Name:      t.Name,
			Keywords:  kws,
			Count:     t.Frequency,
			Sentiment: t.Sentiment,
		})
	}

	out.Insights = deriveInsights(reviews, out)
	return out
}

// deriveInsights turns the notable aggregates into short dashboard strings.
func deriveInsights(reviews []domain.Review, e domain.EnhancedAnalysis) []string {
	insights := []string{}
	if len(reviews) == 0 {
		return insights
	}

	peak := e.TemporalPatterns.DayOfWeek[0]
	for _, b := range e.TemporalPatterns.DayOfWeek[1:] {
		if b.Count > peak.Count {
			peak = b
		}
	}
	if peak.Count > 0 {
		insights = append(insights, fmt.Sprintf("Most reviews arrive on %s (%d of %d)", peak.Day, peak.Count, len(reviews)))
	}

	if n := len(e.HistoricalTrends); n >= 2 {
		first, last := e.HistoricalTrends[0], e.HistoricalTrends[n-1]
		switch {
		case last.AvgRating > first.AvgRating+0.2:
			insights = append(insights, fmt.Sprintf("Average rating improved from %.1f to %.1f across the window", first.AvgRating, last.AvgRating))
		case last.AvgRating < first.AvgRating-0.2:
			insights = append(insights, fmt.Sprintf("Average rating declined from %.1f to %.1f across the window", first.AvgRating, last.AvgRating))
		}
	}

	for _, c := range e.ReviewClusters {
		if c.Sentiment == domain.SentimentNegative {
			insights = append(insights, fmt.Sprintf("%q drives the most negative feedback (%d mentions)", c.Name, c.Count))
			break
		}
	}
	return insights
}
