package storage

import (
	"fmt"
	"io"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// nopCloser adapts backends without resources to io.Closer.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open creates the named backend at path. The returned closer releases the
// backend's resources and is never nil.
func Open(backend, path string) (Store, io.Closer, error) {
	switch backend {
	case BackendFile, "":
		s, err := NewFileStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendMemory:
		return NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q (must be %q, %q or %q)",
			backend, BackendFile, BackendSQLite, BackendMemory)
	}
}
