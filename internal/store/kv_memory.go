// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"sync"
)

// memoryKV is an in-process [KeyValueStore] with an optional byte quota
// over all keys and values.
type memoryKV struct {
	mu      sync.RWMutex
	quota   int
	used    int
	entries map[string]string
}

// NewMemoryKV returns an empty in-memory store. quotaBytes <= 0 disables
// the quota.
func NewMemoryKV(quotaBytes int) KeyValueStore {
	return &memoryKV{
		quota:   quotaBytes,
		entries: make(map[string]string),
	}
}

func (m *memoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + len(key) + len(value)
	if old, ok := m.entries[key]; ok {
		used -= len(key) + len(old)
	}

	if m.quota > 0 && used > m.quota {
		return fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, used, m.quota)
	}

	m.entries[key] = value
	m.used = used
	return nil
}

func (m *memoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryKV) Close() error {
	return nil
}
