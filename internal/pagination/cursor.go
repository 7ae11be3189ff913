// Package pagination implements opaque keyset cursors for the message and
// documentation listings. A cursor pins the (created_at, id) position of the
// last row served so pages stay stable while new rows arrive at the head.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// ErrInvalidCursor is returned for cursors that are not base64 or do not
// carry an id and timestamp.
var ErrInvalidCursor = errors.New("invalid cursor format")

const cursorSeparator = "|"

// Cursor is the decoded position of the last row on the previous page.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// PageResult is one page of a cursor-paginated listing. Cursor is empty on
// the final page.
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// EncodeCursor packs an id and timestamp into an opaque token. An empty id
// yields an empty token, meaning no further pages.
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + cursorSeparator + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor unpacks a token produced by EncodeCursor. An empty token
// decodes to a nil cursor (first page).
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	id, rawTS, ok := strings.Cut(string(decoded), cursorSeparator)
	if !ok {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, rawTS)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: id, Timestamp: timestamp}, nil
}

// CreateNextCursor derives the next-page token from a page of rows. A page
// shorter than the limit is the last one and yields an empty token.
func CreateNextCursor[T any](items []T, limit int, getID func(T) string, getTimestamp func(T) time.Time) string {
	if len(items) == 0 || len(items) < limit {
		return ""
	}
	last := items[len(items)-1]
	return EncodeCursor(getID(last), getTimestamp(last))
}
