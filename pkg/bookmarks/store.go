package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/entrhq/thazh/pkg/logging"
	"github.com/entrhq/thazh/pkg/storage"
	"github.com/google/uuid"
)

// Store implements bookmark CRUD, search and import/export over a
// storage.Store.
type Store struct {
	kv    storage.Store
	log   *logging.Logger
	now   func() time.Time
	newID func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for soft-failed reads.
func WithLogger(l *logging.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// WithClock overrides the time source used for DateAdded.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the bookmark id generator.
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore creates a bookmark store backed by kv.
func NewStore(kv storage.Store, opts ...StoreOption) *Store {
	s := &Store{
		kv:    kv,
		log:   logging.Discard("bookmarks"),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load reads the stored collection in stored order.
func (s *Store) load(ctx context.Context) ([]Bookmark, error) {
	var list []Bookmark
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeyBookmarks, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) save(ctx context.Context, list []Bookmark) error {
	if list == nil {
		list = []Bookmark{}
	}
	return storage.SaveJSON(ctx, s.kv, storage.KeyBookmarks, list)
}

func sortNewestFirst(list []Bookmark) {
	slices.SortStableFunc(list, func(a, b Bookmark) int {
		switch {
		case a.DateAdded > b.DateAdded:
			return -1
		case a.DateAdded < b.DateAdded:
			return 1
		}
		return 0
	})
}

// list is List without the soft failure.
func (s *Store) list(ctx context.Context) ([]Bookmark, error) {
	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return list, nil
}

// List returns all bookmarks, newest first. Storage failures are logged and
// reported as an empty collection.
func (s *Store) List(ctx context.Context) []Bookmark {
	list, err := s.list(ctx)
	if err != nil {
		s.log.Errorf("Error loading bookmarks: %v", err)
		return []Bookmark{}
	}
	if list == nil {
		return []Bookmark{}
	}
	return list
}

// Add saves url as a new bookmark. An empty title is replaced by the URL.
// It fails with ErrDuplicate if url is already bookmarked.
func (s *Store) Add(ctx context.Context, url, title string) (Bookmark, error) {
	list, err := s.list(ctx)
	if err != nil {
		return Bookmark{}, fmt.Errorf("add bookmark: %w", err)
	}

	if slices.ContainsFunc(list, func(b Bookmark) bool { return b.URL == url }) {
		return Bookmark{}, fmt.Errorf("add bookmark %q: %w", url, ErrDuplicate)
	}

	if title == "" {
		title = url
	}
	b := Bookmark{
		ID:        s.newID(),
		URL:       url,
		Title:     title,
		DateAdded: s.now().UnixMilli(),
	}

	list = append([]Bookmark{b}, list...)
	if err := s.save(ctx, list); err != nil {
		return Bookmark{}, fmt.Errorf("add bookmark: %w", err)
	}
	return b, nil
}

// Delete removes the bookmark with id. Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	list, err := s.list(ctx)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}

	kept := slices.DeleteFunc(list, func(b Bookmark) bool { return b.ID == id })
	if err := s.save(ctx, kept); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// Update merges patch into the bookmark with id.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (Bookmark, error) {
	list, err := s.list(ctx)
	if err != nil {
		return Bookmark{}, fmt.Errorf("update bookmark: %w", err)
	}

	idx := slices.IndexFunc(list, func(b Bookmark) bool { return b.ID == id })
	if idx == -1 {
		return Bookmark{}, fmt.Errorf("update bookmark %q: %w", id, ErrNotFound)
	}

	patch.apply(&list[idx])
	if err := s.save(ctx, list); err != nil {
		return Bookmark{}, fmt.Errorf("update bookmark: %w", err)
	}
	return list[idx], nil
}

// Search returns bookmarks whose title or URL contains query, ignoring case.
// A blank query returns every bookmark.
func (s *Store) Search(ctx context.Context, query string) []Bookmark {
	list, err := s.list(ctx)
	if err != nil {
		s.log.Errorf("Error searching bookmarks: %v", err)
		return []Bookmark{}
	}

	matches := []Bookmark{}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append(matches, list...)
	}

	for _, b := range list {
		if b.Matches(q) {
			matches = append(matches, b)
		}
	}
	return matches
}

// IsBookmarked reports whether url is bookmarked exactly. Storage failures
// are logged and reported as false.
func (s *Store) IsBookmarked(ctx context.Context, url string) bool {
	list, err := s.load(ctx)
	if err != nil {
		s.log.Errorf("Error checking bookmark status: %v", err)
		return false
	}
	return slices.ContainsFunc(list, func(b Bookmark) bool { return b.URL == url })
}

// ClearAll removes every bookmark.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := storage.Delete(ctx, s.kv, storage.KeyBookmarks); err != nil {
		return fmt.Errorf("clear bookmarks: %w", err)
	}
	return nil
}

// Export returns the collection, newest first, as indented JSON.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	list, err := s.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("export bookmarks: %w", err)
	}
	if list == nil {
		list = []Bookmark{}
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export bookmarks: %w", err)
	}
	return data, nil
}
