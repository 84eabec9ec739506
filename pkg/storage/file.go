package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const fileStoreVersion = "1.0"

// fileDocument is the on-disk layout of a FileStore.
type fileDocument struct {
	Version string                     `json:"version"`
	Keys    map[string]json.RawMessage `json:"keys"`
}

// FileStore implements Store on top of a single JSON file. The whole file is
// rewritten atomically on every mutation.
type FileStore struct {
	path    string
	data    map[string]json.RawMessage
	mu      sync.RWMutex
	version string
}

// NewFileStore opens the store at path. If path is empty it defaults to
// ~/.thazh/store.json. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".thazh", "store.json")
	}

	store := &FileStore{
		path:    path,
		data:    make(map[string]json.RawMessage),
		version: fileStoreVersion,
	}

	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

// load reads the file from disk.
func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: open %s: %w", ErrFailure, s.path, err)
	}
	defer file.Close()

	var doc fileDocument
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrFailure, s.path, err)
	}

	if doc.Version != "" {
		s.version = doc.Version
	}
	if doc.Keys != nil {
		s.data = doc.Keys
	}
	return nil
}

// save writes the file to disk. Must be called with s.mu held.
func (s *FileStore) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fileDocument{Version: s.version, Keys: s.data}); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode store: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Get returns the blob stored under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

// Set stores blob under key and persists the file. blob must be valid JSON.
func (s *FileStore) Set(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(blob) {
		return failure("set", key, fmt.Errorf("value is not valid JSON"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = append(json.RawMessage(nil), blob...)
	if err := s.save(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return failure("set", key, err)
	}
	return nil
}

// Remove deletes key and persists the file.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.save(); err != nil {
		s.data[key] = prev
		return failure("remove", key, err)
	}
	return nil
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}
