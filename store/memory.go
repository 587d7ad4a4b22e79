package store

import (
	"context"
	"sync"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[int64]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[int64]Document),
	}
}

func (m *MemoryStore) Exists(_ context.Context, collection string, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[collection][id]
	return ok, nil
}

func (m *MemoryStore) Get(_ context.Context, collection string, id int64) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return doc.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, collection string, id int64, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection]; !ok {
		m.collections[collection] = make(map[int64]Document)
	}
	m.collections[collection][id] = withID(doc, id)
	return nil
}

func (m *MemoryStore) Patch(_ context.Context, collection string, id int64, fields Document) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return false, nil
	}
	updated := doc.Clone()
	for k, v := range fields {
		if k == IDField {
			continue
		}
		updated[k] = v
	}
	m.collections[collection][id] = updated
	return true, nil
}

func (m *MemoryStore) Remove(_ context.Context, collection string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.collections[collection]
	if !ok {
		return false, nil
	}
	if _, exists := coll[id]; !exists {
		return false, nil
	}
	delete(coll, id)
	return true, nil
}

func (m *MemoryStore) Scan(_ context.Context, collection string, match Predicate) ([]Document, error) {
	m.mu.RLock()
	coll := m.collections[collection]
	docs := make([]Document, 0, len(coll))
	for _, doc := range coll {
		docs = append(docs, doc.Clone())
	}
	m.mu.RUnlock()

	sortByID(docs)
	return filter(docs, match), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
