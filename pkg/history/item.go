// Package history records page visits.
//
// The collection is a bounded, recency-ordered JSON array stored under
// storage.KeyHistory. Each URL appears at most once; revisits update the
// existing record and move it to the front.
package history

import (
	"strings"
	"time"
)

const (
	// DefaultMaxItems is the default bound on stored visits.
	DefaultMaxItems = 1000

	// DefaultFrequentLimit is used by FrequentSites when no limit is given.
	DefaultFrequentLimit = 10
)

// Item is one visited URL.
type Item struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	VisitTime  int64  `json:"visitTime"` // unix milliseconds of the latest visit
	VisitCount int    `json:"visitCount"`
}

// Visited returns VisitTime as a time.
func (i Item) Visited() time.Time {
	return time.UnixMilli(i.VisitTime)
}

// Matches reports whether lowerQuery is a substring of the title or URL,
// ignoring case.
func (i Item) Matches(lowerQuery string) bool {
	return strings.Contains(strings.ToLower(i.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(i.URL), lowerQuery)
}
