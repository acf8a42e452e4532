package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review_pulse/internal/domain"
)

/********** alias registries (single source of truth) **********/

var reviewAliases = map[string][]string{
	"id":        {"id", "review_id", "reviewId", "source_id"},
	"reviewer":  {"reviewer", "author", "name", "userName", "user.name", "reviewer.name"},
	"text":      {"text", "review_text", "review", "comment", "content", "body", "message"},
	"rating":    {"rating", "rate", "score", "stars", "rating.value", "scores.overall"},
	"timestamp": {"timestamp", "date", "created_at", "createdAt", "time", "published_at", "review_date"},
	"source":    {"source", "platform", "provider", "site", "origin"},
}

// Accepted timestamp layouts, tried in order. Unix seconds/millis handled
// separately for numeric values.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02 Jan 2006",
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, key string) *string {
	for _, p := range reviewAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

// getFloatFlexible: number from several paths (float64/int/string like "4,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return &f
			}
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// parseWhen accepts strings in any known layout plus numeric unix
// seconds/milliseconds. Zero time means unparseable.
func parseWhen(v any) time.Time {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromUnix(n)
		}
	case float64:
		return fromUnix(int64(t))
	case int64:
		return fromUnix(t)
	case int:
		return fromUnix(int64(t))
	}
	return time.Time{}
}

// fromUnix treats values past the year ~2500 in seconds as milliseconds.
func fromUnix(n int64) time.Time {
	if n <= 0 {
		return time.Time{}
	}
	if n > 1e11 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

/********** normalizer **********/

// NormalizeResult reports what survived validation and what was dropped.
type NormalizeResult struct {
	Reviews []domain.Review
	Dropped int
}

// Normalize converts loosely-typed collector records into canonical Reviews,
// sorted by timestamp ascending. Records with no parseable timestamp or a
// rating outside [1,5] are dropped and counted, never fatal. Pure transform.
func Normalize(in []map[string]any) NormalizeResult {
	out := make([]domain.Review, 0, len(in))
	dropped := 0

	for _, r := range in {
		var rv domain.Review

		f := getFloatFlexible(r, reviewAliases["rating"]...)
		if f == nil {
			dropped++
			continue
		}
		rating := int(math.Round(*f))
		if rating < 1 || rating > 5 {
			dropped++
			continue
		}
		rv.Rating = rating

		var when time.Time
		for _, p := range reviewAliases["timestamp"] {
			if v := lookupAny(r, p); v != nil {
				if ts := parseWhen(v); !ts.IsZero() {
					when = ts
					break
				}
			}
		}
		if when.IsZero() {
			dropped++
			continue
		}
		rv.Timestamp = when

		rv.Text = deref(firstNonEmptyAlias(r, "text"))
		rv.Reviewer = firstNonEmptyAlias(r, "reviewer")
		rv.Source = firstNonEmptyAlias(r, "source")

		// ID: prefer explicit; else synthesize a stable hash so duplicate
		// submissions collapse downstream.
		if s := firstNonEmptyAlias(r, "id"); s != nil {
			rv.ID = *s
		} else if f := getFloatFlexible(r, reviewAliases["id"]...); f != nil {
			rv.ID = strconv.FormatInt(int64(*f), 10)
		} else {
			sig := strings.Join([]string{
				deref(rv.Reviewer), rv.Text,
				strconv.Itoa(rv.Rating),
				rv.Timestamp.UTC().Format(time.RFC3339),
			}, "|")
			sum := sha1.Sum([]byte(sig))
			rv.ID = hex.EncodeToString(sum[:])
		}

		if raw, err := json.Marshal(r); err == nil {
			rv.RawJSON = raw
		} else {
			log.Error().Err(err).Str("context", "Normalize").Msg("marshal review failed")
		}

		out = append(out, rv)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })

	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("kept", len(out)).Msg("normalized reviews")
	}
	return NormalizeResult{Reviews: out, Dropped: dropped}
}
