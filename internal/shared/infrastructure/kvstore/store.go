// Package kvstore provides the persistent key-value store that holds license,
// history, and settings records. Every backend honors the same contract:
// Get returns only the keys that exist, Set writes all keys or none, and
// Remove ignores keys that are already absent.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrClosed is returned when an operation is attempted on a closed store.
var ErrClosed = errors.New("kvstore: store is closed")

// Store is an asynchronous-safe key-value store with atomic multi-key writes.
type Store interface {
	// Get returns the raw values for the requested keys.
	// Missing keys are simply absent from the result.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Set writes every entry in one atomic operation.
	Set(ctx context.Context, values map[string][]byte) error

	// Remove deletes the given keys.
	Remove(ctx context.Context, keys ...string) error

	// Close releases backend resources.
	Close() error
}

// GetJSON loads a single key and decodes it into dst.
// It reports false when the key is absent or holds a JSON null.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	values, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	raw, ok := values[key]
	if !ok || isNull(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Encode marshals several values into a map ready for Set.
func Encode(values map[string]any) (map[string][]byte, error) {
	out := make(map[string][]byte, len(values))
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = raw
	}
	return out, nil
}

func isNull(raw []byte) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
