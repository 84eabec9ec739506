// Package storage provides the key-value persistence layer shared by the
// bookmark, history and settings stores.
//
// Every value is an opaque JSON blob addressed by a string key. Callers
// read and write whole collections; there are no partial updates and no
// transactions spanning multiple keys.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by thazh.
const (
	KeyBookmarks = "thazh_bookmarks"
	KeyHistory   = "thazh_history"
	KeySettings  = "thazh_settings"
)

// ErrFailure is wrapped by every error that originates in the storage layer,
// including decode and encode failures of stored blobs.
var ErrFailure = errors.New("storage: failure")

// Store is a durable string-keyed blob store.
type Store interface {
	// Get returns the blob stored under key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (blob []byte, ok bool, err error)

	// Set stores blob under key, replacing any previous value.
	Set(ctx context.Context, key string, blob []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// failure wraps err so that errors.Is(err, ErrFailure) holds.
func failure(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrFailure, op, key, err)
}

// LoadJSON decodes the blob stored under key into v.
// It returns false without touching v if the key is absent.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	blob, ok, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrFailure) {
			return false, err
		}
		return false, failure("get", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(blob, v); err != nil {
		return false, failure("decode", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return failure("encode", key, err)
	}
	if err := s.Set(ctx, key, blob); err != nil {
		if errors.Is(err, ErrFailure) {
			return err
		}
		return failure("set", key, err)
	}
	return nil
}

// Delete removes key, wrapping backend errors in ErrFailure.
func Delete(ctx context.Context, s Store, key string) error {
	if err := s.Remove(ctx, key); err != nil {
		if errors.Is(err, ErrFailure) {
			return err
		}
		return failure("remove", key, err)
	}
	return nil
}
