package pebble

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"
	"golang.org/x/sync/errgroup"

	"github.com/phantasma-io/go-phantasma/internal/storage/keyvalue"
)

// Manager opens and tracks the named pebble databases under a data directory
// (chain state, transaction archive, ...). Each database is opened once and
// shared.
type Manager struct {
	dbs  map[string]*pebble.DB
	path string
	mu   sync.Mutex
}

func NewManager(path string) *Manager {
	return &Manager{
		dbs:  make(map[string]*pebble.DB),
		path: path,
	}
}

func (m *Manager) OpenStore(name string) (keyvalue.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewStore(db), nil
	}

	dbPath := filepath.Join(m.path, name+".db")
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}
	m.dbs[name] = db

	return NewStore(db), nil
}

func (m *Manager) CloseStore(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("database %s not found", name)
	}
	if err := db.Close(); err != nil {
		return err
	}
	delete(m.dbs, name)
	return nil
}

// Close shuts every open database down, in parallel since pebble close can
// flush memtables to disk.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var g errgroup.Group
	for name, db := range m.dbs {
		name, db := name, db
		g.Go(func() error {
			if err := db.Close(); err != nil {
				return fmt.Errorf("failed to close database %s: %w", name, err)
			}
			return nil
		})
	}
	err := g.Wait()
	m.dbs = make(map[string]*pebble.DB)
	return err
}
