// Package domain contains core business entities and rules.
package domain

import (
	"regexp"
	"time"
)

// DateKeyLayout is the layout of a per-day log key (YYYY-MM-DD).
const DateKeyLayout = "2006-01-02"

// DisplayDateLayout renders a date key for humans, e.g. "Monday, January 2, 2006".
const DisplayDateLayout = "Monday, January 2, 2006"

// Reserved store keys. They never appear in a date listing.
const (
	KeyToday  = "today"
	KeyLatest = "latest"
)

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// QuoteRecord is one generated quote plus the parameters it was generated with.
// Records are created once per generation and never mutated.
// The JSON field names are the persisted and served wire format.
type QuoteRecord struct {
	// Text is the generated quote body. It may be empty.
	Text string `json:"quote"`

	Theme    string `json:"theme"`
	Tone     string `json:"tone"`
	Audience string `json:"audience"`

	// GeneratedAt is the instant of generation.
	GeneratedAt time.Time `json:"timestamp"`

	// Hour is the local hour (0-23) used to resolve the parameters.
	Hour int `json:"hour"`
}

// NewQuoteRecord builds a record from resolved parameters and generated text.
// The timestamp is normalised to UTC so persisted files are location independent.
func NewQuoteRecord(text string, params HourlyParameters, generatedAt time.Time) QuoteRecord {
	return QuoteRecord{
		Text:        text,
		Theme:       params.Theme,
		Tone:        params.Tone,
		Audience:    params.Audience,
		GeneratedAt: generatedAt.UTC(),
		Hour:        params.Hour,
	}
}

// DateKey returns the per-day log key of t in loc. A nil loc means time.Local.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	return t.In(loc).Format(DateKeyLayout)
}

// IsDateKey reports whether key names a per-day log.
func IsDateKey(key string) bool {
	return dateKeyPattern.MatchString(key)
}

// DisplayDate formats a date key for the history view.
// Keys that do not parse are returned unchanged.
func DisplayDate(key string) string {
	d, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return key
	}

	return d.Format(DisplayDateLayout)
}

// DayQuotes is one calendar day of the history view.
type DayQuotes struct {
	Date        string
	DisplayDate string
	Quotes      []QuoteRecord
}

// HistoryView is today's quotes in generation order plus earlier days,
// most recent first. Today never appears in Days.
type HistoryView struct {
	Today []QuoteRecord
	Days  []DayQuotes
}
