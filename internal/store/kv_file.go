// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// fileKV keeps all entries in one JSON object on disk. Every write replaces
// the file atomically (temp file + rename), so a failed write leaves the
// previous contents intact.
type fileKV struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

// NewFileKV opens the JSON key-value file at path. A missing file is an
// empty store.
func NewFileKV(path string) (KeyValueStore, error) {
	kv := &fileKV{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return kv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading store file: %w", err)
	}

	if len(data) > 0 {
		if err = json.Unmarshal(data, &kv.entries); err != nil {
			return nil, fmt.Errorf("error decoding store file %s: %w", path, err)
		}
	}

	return kv, nil
}

func (f *fileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *fileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := maps.Clone(f.entries)
	next[key] = value
	if err := f.persist(next); err != nil {
		return err
	}
	f.entries = next
	return nil
}

func (f *fileKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[key]; !ok {
		return nil
	}

	next := maps.Clone(f.entries)
	delete(next, key)
	if err := f.persist(next); err != nil {
		return err
	}
	f.entries = next
	return nil
}

func (f *fileKV) Close() error {
	return nil
}

func (f *fileKV) persist(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("error writing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error closing temp file: %w", err)
	}

	if err = os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error replacing store file: %w", err)
	}

	return nil
}
