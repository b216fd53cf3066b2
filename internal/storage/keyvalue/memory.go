package keyvalue

import (
	"bytes"
	"context"
	"sort"
	"sync"
)

// MemoryStore is a map-backed Store used by tests and by the genesis bootstrap
// before a data directory exists. Iteration order is sorted so behavior
// matches the on-disk backends.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Read(_ context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Write(_ context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(key)] = v
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *MemoryStore) Batch(_ context.Context, ops []BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		switch op.Type {
		case BatchPut:
			v := make([]byte, len(op.Value))
			copy(v, op.Value)
			m.data[string(op.Key)] = v
		case BatchDelete:
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

func (m *MemoryStore) Iterator(_ context.Context, start, end []byte) (Iterator, error) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		kb := []byte(k)
		if start != nil && bytes.Compare(kb, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(kb, end) > 0 {
			continue
		}
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	sort.Strings(keys)

	it := &memoryIterator{store: m, keys: keys, pos: -1}
	return it, nil
}

type memoryIterator struct {
	store *MemoryStore
	keys  []string
	pos   int
}

func (it *memoryIterator) Next() bool {
	it.pos++
	return it.pos < len(it.keys)
}

func (it *memoryIterator) Key() []byte {
	return []byte(it.keys[it.pos])
}

func (it *memoryIterator) Value() []byte {
	v, err := it.store.Read(context.Background(), it.Key())
	if err != nil {
		return nil
	}
	return v
}

func (it *memoryIterator) Error() error { return nil }
func (it *memoryIterator) Close() error { return nil }
