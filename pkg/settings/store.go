package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/thazh/pkg/logging"
	"github.com/entrhq/thazh/pkg/storage"
)

// Store loads and saves Settings. The last loaded or saved value is cached
// so hot paths (the history gate) can read it without storage access.
type Store struct {
	kv  storage.Store
	log *logging.Logger

	mu      sync.RWMutex
	current Settings
}

// NewStore creates a settings store backed by kv, initially holding defaults.
func NewStore(kv storage.Store, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Discard("settings")
	}
	return &Store{kv: kv, log: log, current: Defaults()}
}

// Load reads the stored settings. Missing fields keep their defaults.
// Storage failures are logged and yield defaults.
func (s *Store) Load(ctx context.Context) Settings {
	loaded := Defaults()
	if _, err := storage.LoadJSON(ctx, s.kv, storage.KeySettings, &loaded); err != nil {
		s.log.Errorf("Failed to load settings: %v", err)
		loaded = Defaults()
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded
}

// Current returns the cached settings.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save persists settings as a whole.
func (s *Store) Save(ctx context.Context, settings Settings) error {
	if err := storage.SaveJSON(ctx, s.kv, storage.KeySettings, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()
	return nil
}

// Set changes one toggle and persists the result.
func (s *Store) Set(ctx context.Context, name string, value bool) (Settings, error) {
	updated := s.Current()
	p, err := updated.field(name)
	if err != nil {
		return s.Current(), err
	}
	*p = value

	if err := s.Save(ctx, updated); err != nil {
		return s.Current(), err
	}
	return updated, nil
}

// Toggle flips one toggle and persists the result.
func (s *Store) Toggle(ctx context.Context, name string) (Settings, error) {
	value, err := s.Current().Get(name)
	if err != nil {
		return s.Current(), err
	}
	return s.Set(ctx, name, !value)
}

// Reset restores and persists the defaults.
func (s *Store) Reset(ctx context.Context) (Settings, error) {
	defaults := Defaults()
	if err := s.Save(ctx, defaults); err != nil {
		return s.Current(), err
	}
	return defaults, nil
}
