package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[Address][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[Address][]byte)}
}

// Read returns a copy of the stored blob.
func (m *MemoryStore) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[Address{bucket, key}]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, Address{bucket, key})
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores a copy of the blob.
func (m *MemoryStore) Write(ctx context.Context, bucket, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	m.mu.Lock()
	m.objects[Address{bucket, key}] = stored
	m.mu.Unlock()
	return nil
}

// Copy duplicates an existing blob under a new key.
func (m *MemoryStore) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[Address{bucket, srcKey}]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, Address{bucket, srcKey})
	}
	dup := make([]byte, len(data))
	copy(dup, data)
	m.objects[Address{bucket, dstKey}] = dup
	return nil
}

// Exists reports whether an object is present.
func (m *MemoryStore) Exists(bucket, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[Address{bucket, key}]
	return ok
}
