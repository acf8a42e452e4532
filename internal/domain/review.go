package domain

import "time"

// Review is the canonical, validated form of one customer review.
// Built once by the normalizer from whatever shape the collector sends;
// never mutated afterwards.
type Review struct {
	ID         string    `json:"id"`
	BusinessID int64     `json:"business_id,omitempty"`
	Rating     int       `json:"rating"` // 1..5
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Reviewer   *string   `json:"reviewer,omitempty"`
	Source     *string   `json:"source,omitempty"`
	RawJSON    []byte    `json:"-"`
}

// Business is the metadata the caller supplies about the business under
// analysis. Type selects the prompt template family.
type Business struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Type string `json:"type"` // restaurant|retail|service|hospitality
}
