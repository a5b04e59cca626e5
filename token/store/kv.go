package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrKeyNotFound is returned by KV.Get for a key that was never set or was cleared.
var ErrKeyNotFound = errors.New("key not found")

// KV is the small key/value persistence the token store sits on.
type KV interface {
	// Get returns the raw value stored under key
	Get(key string) ([]byte, error)

	// Set writes every entry of values in one operation
	Set(values map[string][]byte) error

	// Clear removes keys; clearing an absent key is not an error
	Clear(keys ...string) error
}

// FileKV keeps every key in a single JSON document on disk. Writes go to a
// temporary file that is renamed over the original, so a crash never leaves
// half of a Set behind.
type FileKV struct {
	path string
	mu   sync.Mutex
}

var _ KV = (*FileKV)(nil)

func NewFileKV(path string) (*FileKV, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store file path is required")
	}
	return &FileKV{path: path}, nil
}

func (f *FileKV) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readLocked()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return []byte(v), nil
}

func (f *FileKV) Set(values map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readLocked()
	if err != nil {
		// A corrupt document is replaced rather than blocking every future write
		doc = map[string]json.RawMessage{}
	}
	for k, v := range values {
		doc[k] = json.RawMessage(v)
	}
	return f.writeLocked(doc)
}

func (f *FileKV) Clear(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.readLocked()
	if err != nil {
		doc = map[string]json.RawMessage{}
	}
	for _, k := range keys {
		delete(doc, k)
	}
	if len(doc) == 0 {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove store file: %w", err)
		}
		return nil
	}
	return f.writeLocked(doc)
}

func (f *FileKV) readLocked() (map[string]json.RawMessage, error) {
	doc := map[string]json.RawMessage{}
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode store file: %w", err)
	}
	return doc, nil
}

func (f *FileKV) writeLocked(doc map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("mkdir store dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
