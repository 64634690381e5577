package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// File is a KV persisted as a single json object on disk.
//
// The whole file is rewritten on every change, through a temporary file
// renamed over the previous one.
type File struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// OpenFile opens or creates the store at path.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f := &File{path: path, data: make(map[string]string)}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("read data file: %w", err)
	case len(data) == 0:
		return f, nil
	}
	if err := json.Unmarshal(data, &f.data); err != nil {
		return nil, fmt.Errorf("parse data file %q: %w", path, err)
	}
	if f.data == nil {
		f.data = make(map[string]string)
	}
	return f, nil
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	next := maps.Clone(f.data)
	next[key] = value
	return f.persistLocked(next)
}

func (f *File) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	next := maps.Clone(f.data)
	for _, k := range keys {
		delete(next, k)
	}
	if len(next) == len(f.data) {
		return nil
	}
	return f.persistLocked(next)
}

// persistLocked writes next to disk, then makes it the content.
func (f *File) persistLocked(next map[string]string) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}
	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp data file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	f.data = next
	return nil
}
