package models

import (
	"strings"
	"time"
)

// Source tags where the text of a GuideRecord came from.
type Source string

const (
	SourceCache       Source = "cache"
	SourceSearch      Source = "search"
	SourceLocalData   Source = "local-data"
	SourceGeoEnriched Source = "geo-enriched"
	SourceSynthesized Source = "synthesized"
)

// Primary returns the part before any composite suffix,
// e.g. "synthesized" for "synthesized+search-evidence".
func (s Source) Primary() Source {
	if i := strings.IndexByte(string(s), '+'); i >= 0 {
		return s[:i]
	}
	return s
}

func (s Source) IsComposite() bool {
	return strings.Contains(string(s), "+")
}

// With layers a secondary tag on top of s.
func (s Source) With(secondary string) Source {
	return Source(string(s) + "+" + secondary)
}

// Confidence is a discrete trust tier.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank orders tiers so they can be compared.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

type Image struct {
	URL         string `json:"url"`
	Provider    string `json:"provider"`
	Attribution string `json:"attribution,omitempty"`
}

// GuideRecord is the persisted result of guide resolution.
type GuideRecord struct {
	Text        string     `json:"quick_guide"`
	Source      Source     `json:"source"`
	Confidence  Confidence `json:"confidence"`
	GeneratedAt float64    `json:"generated_at"`
	SourceURL   *string    `json:"source_url"`
	Images      []Image    `json:"images"`

	// Cached is set when the record was served from the cache store; it is never persisted.
	Cached bool `json:"-"`
}

// Generated returns GeneratedAt as a time.
func (g GuideRecord) Generated() time.Time {
	sec := int64(g.GeneratedAt)
	nsec := int64((g.GeneratedAt - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// EpochSeconds converts t to the float representation used by GeneratedAt.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// SearchResult is one hit from the search-evidence collaborator.
type SearchResult struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Summary is an encyclopedia page summary.
type Summary struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
}
