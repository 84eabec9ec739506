package history

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/thazh/pkg/logging"
	"github.com/entrhq/thazh/pkg/storage"
	"github.com/google/uuid"
)

// Store implements visit recording and queries over a storage.Store.
type Store struct {
	// mu serializes read-modify-write cycles; tabs record concurrently
	mu sync.Mutex

	kv       storage.Store
	log      *logging.Logger
	exclude  *Matcher
	maxItems int
	gate     func() bool
	now      func() time.Time
	newID    func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for soft failures.
func WithLogger(l *logging.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// WithExclusions replaces the default exclusion matcher.
func WithExclusions(m *Matcher) StoreOption {
	return func(s *Store) {
		s.exclude = m
	}
}

// WithMaxItems bounds the collection size.
func WithMaxItems(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithGate makes Record a no-op whenever gate returns false.
func WithGate(gate func() bool) StoreOption {
	return func(s *Store) {
		s.gate = gate
	}
}

// WithClock overrides the time source for visit times.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the item id generator.
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore creates a history store backed by kv.
func NewStore(kv storage.Store, opts ...StoreOption) *Store {
	defaults, _ := NewMatcher(DefaultExcludePatterns)
	s := &Store{
		kv:       kv,
		log:      logging.Discard("history"),
		exclude:  defaults,
		maxItems: DefaultMaxItems,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sortRecentFirst(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		switch {
		case a.VisitTime > b.VisitTime:
			return -1
		case a.VisitTime < b.VisitTime:
			return 1
		}
		return 0
	})
}

// list reads the collection ordered by visit time, newest first.
func (s *Store) list(ctx context.Context) ([]Item, error) {
	var items []Item
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeyHistory, &items); err != nil {
		return nil, err
	}
	sortRecentFirst(items)
	return items, nil
}

func (s *Store) save(ctx context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	return storage.SaveJSON(ctx, s.kv, storage.KeyHistory, items)
}

// List returns all visits, newest first. Storage failures are logged and
// reported as an empty collection.
func (s *Store) List(ctx context.Context) []Item {
	items, err := s.list(ctx)
	if err != nil {
		s.log.Errorf("Error loading history: %v", err)
		return []Item{}
	}
	if items == nil {
		return []Item{}
	}
	return items
}

// Record notes a visit to url. Excluded URLs are ignored. A revisit bumps
// the existing record to the front, increments its count and replaces its
// title when title is non-empty. Failures are logged, never returned.
func (s *Store) Record(ctx context.Context, url, title string) {
	if s.gate != nil && !s.gate() {
		return
	}
	if s.exclude.Excluded(url) {
		return
	}

	if err := s.record(ctx, url, title); err != nil {
		s.log.Errorf("Error adding history: %v", err)
	}
}

func (s *Store) record(ctx context.Context, url, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.list(ctx)
	if err != nil {
		return err
	}

	now := s.now().UnixMilli()
	idx := slices.IndexFunc(items, func(i Item) bool { return i.URL == url })

	var item Item
	if idx != -1 {
		item = items[idx]
		item.VisitTime = now
		item.VisitCount++
		if title != "" {
			item.Title = title
		}
		items = slices.Delete(items, idx, idx+1)
	} else {
		if title == "" {
			title = url
		}
		item = Item{
			ID:         s.newID(),
			URL:        url,
			Title:      title,
			VisitTime:  now,
			VisitCount: 1,
		}
	}

	items = append([]Item{item}, items...)
	if len(items) > s.maxItems {
		items = items[:s.maxItems]
	}
	return s.save(ctx, items)
}

// DeleteItem removes the visit with id. The collection is rewritten even if
// nothing matched.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.list(ctx)
	if err != nil {
		return fmt.Errorf("delete history item: %w", err)
	}

	items = slices.DeleteFunc(items, func(i Item) bool { return i.ID == id })
	if err := s.save(ctx, items); err != nil {
		return fmt.Errorf("delete history item: %w", err)
	}
	return nil
}

// Clear removes the whole history.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := storage.Delete(ctx, s.kv, storage.KeyHistory); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Search returns visits whose title or URL contains query, ignoring case.
// A blank query returns the full history.
func (s *Store) Search(ctx context.Context, query string) []Item {
	items, err := s.list(ctx)
	if err != nil {
		s.log.Errorf("Error searching history: %v", err)
		return []Item{}
	}

	matches := []Item{}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append(matches, items...)
	}
	for _, item := range items {
		if item.Matches(q) {
			matches = append(matches, item)
		}
	}
	return matches
}

// FrequentSites returns up to limit items visited more than once, ordered by
// visit count and then by recency.
func (s *Store) FrequentSites(ctx context.Context, limit int) []Item {
	if limit <= 0 {
		limit = DefaultFrequentLimit
	}

	items, err := s.list(ctx)
	if err != nil {
		s.log.Errorf("Error getting frequent sites: %v", err)
		return []Item{}
	}

	frequent := slices.DeleteFunc(items, func(i Item) bool { return i.VisitCount <= 1 })
	slices.SortStableFunc(frequent, func(a, b Item) int {
		if a.VisitCount != b.VisitCount {
			return b.VisitCount - a.VisitCount
		}
		switch {
		case a.VisitTime > b.VisitTime:
			return -1
		case a.VisitTime < b.VisitTime:
			return 1
		}
		return 0
	})

	if len(frequent) > limit {
		frequent = frequent[:limit]
	}
	if frequent == nil {
		return []Item{}
	}
	return frequent
}

// ByDate returns the visits made on the calendar day of date, in date's
// location, newest first.
func (s *Store) ByDate(ctx context.Context, date time.Time) []Item {
	items, err := s.list(ctx)
	if err != nil {
		s.log.Errorf("Error getting history by date: %v", err)
		return []Item{}
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, int(999*time.Millisecond), date.Location())
	startMs, endMs := start.UnixMilli(), end.UnixMilli()

	day := []Item{}
	for _, item := range items {
		if item.VisitTime >= startMs && item.VisitTime <= endMs {
			day = append(day, item)
		}
	}
	return day
}
