package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every namespace in one JSON document on disk:
// {"<namespace>": {"<key>": "<value>"}}. Values are stored as text.
// Writes go to a temp file that is renamed over the document.
type FileStore struct {
	mu        sync.Mutex
	path      string
	namespace string
}

func NewFileStore(path, namespace string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file storage: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("file storage: %w", err)
	}
	return &FileStore{path: path, namespace: namespaceOr(namespace)}, nil
}

func (f *FileStore) load() (map[string]map[string]string, error) {
	doc := map[string]map[string]string{}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file storage: read: %w", err)
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("file storage: decode %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *FileStore) save(doc map[string]map[string]string) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.json")
	if err != nil {
		return fmt.Errorf("file storage: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("file storage: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file storage: write: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("file storage: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	v, ok := doc[f.namespace][key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if doc[f.namespace] == nil {
		doc[f.namespace] = map[string]string{}
	}
	doc[f.namespace][key] = string(value)
	return f.save(doc)
}

func (f *FileStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc[f.namespace][key]; !ok {
		return nil
	}
	delete(doc[f.namespace], key)
	return f.save(doc)
}

func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc[f.namespace]; !ok {
		return nil
	}
	delete(doc, f.namespace)
	return f.save(doc)
}

func (f *FileStore) Close() error { return nil }
