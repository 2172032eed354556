package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{docs: map[string]Document{}}
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, key string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, unavailable("document get", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[key]
	if !ok {
		return Document{Key: key}, nil
	}
	return copyDoc(doc), nil
}

// CompareAndSwap implements Store.
func (m *MemoryStore) CompareAndSwap(ctx context.Context, key string, version int64, body []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("document swap", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.docs[key].Version != version {
		return 0, fmt.Errorf("document swap %s@%d: %w", key, version, ErrRaceLost)
	}
	next := Document{Key: key, Body: append([]byte(nil), body...), Version: version + 1}
	m.docs[key] = next
	return next.Version, nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("document list", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Document, 0, len(m.docs))
	for key, doc := range m.docs {
		if strings.HasPrefix(key, prefix) {
			out = append(out, copyDoc(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func copyDoc(d Document) Document {
	d.Body = append([]byte(nil), d.Body...)
	return d
}
