// Package bookmarks stores the user's saved pages.
//
// The whole collection is persisted as one JSON array under
// storage.KeyBookmarks. Every mutation is a read-modify-write of the full
// array; URLs are compared exactly, without normalization.
package bookmarks

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrDuplicate      = errors.New("bookmarks: bookmark already exists")
	ErrNotFound       = errors.New("bookmarks: bookmark not found")
	ErrInvalidFormat  = errors.New("bookmarks: invalid bookmarks format")
	ErrNoValidEntries = errors.New("bookmarks: no valid bookmarks found")
)

// Bookmark is a saved page.
type Bookmark struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	DateAdded int64  `json:"dateAdded"` // unix milliseconds
	Favicon   string `json:"favicon,omitempty"`
}

// Added returns DateAdded as a time.
func (b Bookmark) Added() time.Time {
	return time.UnixMilli(b.DateAdded)
}

// Matches reports whether the lowercased query is a substring of the
// bookmark's title or URL, ignoring case.
func (b Bookmark) Matches(lowerQuery string) bool {
	return strings.Contains(strings.ToLower(b.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(b.URL), lowerQuery)
}

// Patch carries the fields to change in Update. Nil fields are left alone.
type Patch struct {
	URL     *string
	Title   *string
	Favicon *string
}

func (p Patch) apply(b *Bookmark) {
	if p.URL != nil {
		b.URL = *p.URL
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Favicon != nil {
		b.Favicon = *p.Favicon
	}
}
