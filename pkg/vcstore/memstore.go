package vcstore

import (
	"context"
	"sort"
	"sync"
)

// In-memory Store for tests and the standalone dev REST API
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Item
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: map[string]Item{},
	}
}

func (m *MemoryStore) GetItem(_ context.Context, id string) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, found := m.items[id]
	if !found {
		return nil, nil
	}

	return &item, nil
}

func (m *MemoryStore) PutItem(_ context.Context, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[item.Id] = item

	return nil
}

func (m *MemoryStore) IncrementCount(_ context.Context, id string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := m.items[id]
	item.Id = id
	item.Count += delta
	m.items[id] = item

	return item.Count, nil
}

// sorted by id
func (m *MemoryStore) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := []Item{}
	for _, item := range m.items {
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Id < items[j].Id })

	return items
}
