package model

import "time"

// SourceGoogleMaps tags records scraped from a Google Maps place page.
const SourceGoogleMaps = "google_maps"

// Rating bounds accepted for a single review.
const (
	MinRating = 1.0
	MaxRating = 5.0
)

// ReviewRecord is one review extracted from a rendered review page.
// Every pointer field is optional; a record with all four nil is never stored.
type ReviewRecord struct {
	ID           string    `json:"id,omitempty"`
	CompetitorID string    `json:"competitor_id,omitempty"`
	Rating       *float64  `json:"rating"`
	ReviewerName *string   `json:"reviewer_name"`
	ReviewText   *string   `json:"review_text"`
	ReviewDate   *string   `json:"review_date"` // opaque relative string, e.g. "3 months ago"
	Source       string    `json:"source"`
	RawCapture   string    `json:"raw_capture,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// HasContent reports whether at least one extracted field is present.
func (r ReviewRecord) HasContent() bool {
	return r.Rating != nil || r.ReviewerName != nil || r.ReviewText != nil || r.ReviewDate != nil
}

// RatingInRange reports whether the record carries a rating in [1,5].
func (r ReviewRecord) RatingInRange() bool {
	return r.Rating != nil && ValidRating(*r.Rating)
}

// ValidRating reports whether v is a usable star rating.
func ValidRating(v float64) bool {
	return v >= MinRating && v <= MaxRating
}

// Text returns the review text or "" when absent.
func (r ReviewRecord) Text() string {
	if r.ReviewText == nil {
		return ""
	}
	return *r.ReviewText
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
