package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists all keys in a single JSON document on disk.
// Writes go to a temporary file that is renamed into place, so a Set is
// either fully visible or not at all.
type FileStore struct {
	filePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

// Get reads the requested keys from the document.
func (s *FileStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if v, ok := doc[key]; ok {
			out[key] = []byte(v)
		}
	}
	return out, nil
}

// Set merges the values into the document and rewrites it.
func (s *FileStore) Set(ctx context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for key, v := range values {
		doc[key] = json.RawMessage(copyBytes(v))
	}
	return s.write(doc)
}

// Remove deletes keys from the document.
func (s *FileStore) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	changed := false
	for _, key := range keys {
		if _, ok := doc[key]; ok {
			delete(doc, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.write(doc)
}

// Close is a no-op; the file is not held open between calls.
func (s *FileStore) Close() error {
	return nil
}

// FilePath returns the path to the backing document.
func (s *FileStore) FilePath() string {
	return s.filePath
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return make(map[string]json.RawMessage), nil
	}

	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	return doc, nil
}

func (s *FileStore) write(doc map[string]json.RawMessage) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".lingua-store-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.filePath)
}
