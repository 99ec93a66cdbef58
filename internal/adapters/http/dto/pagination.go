package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 30

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 366

// Cursor errors.
var (
	// ErrInvalidCursor is returned when cursor decoding fails.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor signals a first page request. It is not a failure.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest represents pagination parameters from the request.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor" json:"cursor"`

	// Limit is the maximum number of items to return (1-366, default 30).
	Limit int `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=366"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// DecodeCursor decodes and validates the request cursor.
// Returns ErrNoCursor if cursor is empty (first page request).
func (p *PaginationRequest) DecodeCursor() (*CursorData, error) {
	cursor, err := DecodeCursor(p.Cursor)
	if err != nil {
		return nil, err
	}

	if err := Validate(cursor); err != nil {
		return nil, ErrInvalidCursor
	}

	return cursor, nil
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// NewPaginatedResponse creates a new paginated response.
// Pass limit+1 items to detect if there are more pages, then trim to limit.
func NewPaginatedResponse[T any](items []T, limit int, cursorBuilder func(T) *CursorData) *PaginatedResponse[T] {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	if items == nil {
		items = []T{}
	}

	var nextCursor string
	if hasMore && len(items) > 0 && cursorBuilder != nil {
		nextCursor = EncodeCursor(cursorBuilder(items[len(items)-1]))
	}

	return &PaginatedResponse[T]{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}
}

// CursorData is the position encoded in a pagination cursor: the last
// date key of the previous page.
type CursorData struct {
	Date string `json:"d" validate:"required,datekey"`
}

// NewDateCursor creates a cursor positioned after date.
func NewDateCursor(date string) *CursorData {
	return &CursorData{Date: date}
}

// EncodeCursor encodes cursor data to a base64 string.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 cursor string to cursor data.
// Returns ErrNoCursor if the encoded string is empty.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	jsonBytes, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}

// PageDates returns the page of descending date keys that follows cursor.
// A nil cursor starts at the newest date.
func PageDates(dates []string, cursor *CursorData, limit int) *PaginatedResponse[string] {
	start := 0

	if cursor != nil {
		start = len(dates)

		for i, d := range dates {
			if d < cursor.Date {
				start = i
				break
			}
		}
	}

	end := min(start+limit+1, len(dates))

	return NewPaginatedResponse(dates[start:end], limit, NewDateCursor)
}
