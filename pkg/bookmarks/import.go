package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// importEntry is the permissive shape of one element of an imported array.
type importEntry struct {
	URL       *string         `json:"url"`
	Title     *string         `json:"title"`
	DateAdded json.RawMessage `json:"dateAdded"`
	Favicon   string          `json:"favicon"`
}

// Import merges a JSON array of bookmarks (as produced by Export) ahead of
// the existing collection. Entries without a non-blank string url or a
// string title are dropped; survivors get fresh ids. When a URL occurs more
// than once the first occurrence wins, so imported entries replace existing
// ones. It returns the number of entries accepted from the payload.
func (s *Store) Import(ctx context.Context, blob []byte) (int, error) {
	trimmed := strings.TrimSpace(string(blob))
	if !strings.HasPrefix(trimmed, "[") {
		return 0, fmt.Errorf("import bookmarks: %w: payload is not an array", ErrInvalidFormat)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return 0, fmt.Errorf("import bookmarks: %w: %v", ErrInvalidFormat, err)
	}

	var incoming []Bookmark
	for _, item := range raw {
		var e importEntry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		if e.URL == nil || strings.TrimSpace(*e.URL) == "" || e.Title == nil {
			continue
		}
		incoming = append(incoming, Bookmark{
			URL:       *e.URL,
			Title:     *e.Title,
			DateAdded: parseMillis(e.DateAdded),
			Favicon:   e.Favicon,
		})
	}

	return s.merge(ctx, incoming)
}

// parseMillis accepts a JSON number; anything else yields 0.
func parseMillis(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}

// ImportHTML merges bookmarks from a Netscape bookmark file, the format
// desktop browsers export. Merge rules are the same as Import.
func (s *Store) ImportHTML(ctx context.Context, r io.Reader) (int, error) {
	incoming, err := parseNetscape(r)
	if err != nil {
		return 0, fmt.Errorf("import bookmarks: %w: %v", ErrInvalidFormat, err)
	}
	return s.merge(ctx, incoming)
}

// merge assigns ids and timestamps to incoming, places them ahead of the
// stored bookmarks, drops repeated URLs and persists the result.
func (s *Store) merge(ctx context.Context, incoming []Bookmark) (int, error) {
	if len(incoming) == 0 {
		return 0, fmt.Errorf("import bookmarks: %w", ErrNoValidEntries)
	}

	now := s.now().UnixMilli()
	for i := range incoming {
		incoming[i].ID = s.newID()
		if incoming[i].DateAdded == 0 {
			incoming[i].DateAdded = now
		}
	}

	existing, err := s.list(ctx)
	if err != nil {
		return 0, fmt.Errorf("import bookmarks: %w", err)
	}

	merged := make([]Bookmark, 0, len(incoming)+len(existing))
	seen := make(map[string]bool, cap(merged))
	for _, b := range append(incoming, existing...) {
		if seen[b.URL] {
			continue
		}
		seen[b.URL] = true
		merged = append(merged, b)
	}

	if err := s.save(ctx, merged); err != nil {
		return 0, fmt.Errorf("import bookmarks: %w", err)
	}
	s.log.Infof("Imported %d bookmarks (%d total)", len(incoming), len(merged))
	return len(incoming), nil
}

// addDateMillis converts a Netscape ADD_DATE (unix seconds) to milliseconds.
func addDateMillis(v string) int64 {
	secs, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return secs * 1000
}
