// Package state provides the buffered view native contracts mutate. All
// writes of one transaction accumulate in a ChangeSet; they reach the backing
// store only on Commit, so any error simply discards the set and the
// transaction leaves no trace.
package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/phantasma-io/go-phantasma/internal/storage/keyvalue"
)

// Action records how a tracked entry differs from the base store.
type Action int

const (
	// ActionCache means the entry was read but not modified.
	ActionCache Action = iota
	// ActionInsert means the entry does not exist in the base store.
	ActionInsert
	// ActionModify means an existing entry was overwritten.
	ActionModify
	// ActionErase means an existing entry was deleted.
	ActionErase
)

type trackedEntry struct {
	action  Action
	current []byte
}

// ChangeSet buffers reads and writes over a base store.
type ChangeSet struct {
	base  keyvalue.Store
	items map[string]*trackedEntry
}

func NewChangeSet(base keyvalue.Store) *ChangeSet {
	return &ChangeSet{
		base:  base,
		items: make(map[string]*trackedEntry),
	}
}

// Get returns the current value for key, or nil when absent.
func (c *ChangeSet) Get(key []byte) ([]byte, error) {
	if entry, ok := c.items[string(key)]; ok {
		if entry.action == ActionErase {
			return nil, nil
		}
		return entry.current, nil
	}

	data, err := c.base.Read(context.Background(), key)
	if err != nil {
		if errors.Is(err, keyvalue.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	c.items[string(key)] = &trackedEntry{action: ActionCache, current: data}
	return data, nil
}

// Has reports whether key currently exists in the merged view.
func (c *ChangeSet) Has(key []byte) (bool, error) {
	v, err := c.Get(key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// Put writes key to the buffered view.
func (c *ChangeSet) Put(key, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)

	if entry, ok := c.items[string(key)]; ok {
		switch entry.action {
		case ActionInsert:
			// stays an insert with new data
		case ActionErase, ActionCache, ActionModify:
			entry.action = ActionModify
		}
		entry.current = v
		return
	}
	// Unread key: whether this is an insert or a modify against the base is
	// resolved at commit; until then treat it as a modify.
	c.items[string(key)] = &trackedEntry{action: ActionModify, current: v}
}

// Delete removes key from the buffered view.
func (c *ChangeSet) Delete(key []byte) {
	if entry, ok := c.items[string(key)]; ok {
		entry.action = ActionErase
		entry.current = nil
		return
	}
	c.items[string(key)] = &trackedEntry{action: ActionErase}
}

// ScanPrefix returns the keys under prefix in the merged view, sorted
// lexicographically. Contracts rely on the ordering being deterministic.
func (c *ChangeSet) ScanPrefix(prefix []byte) ([][]byte, error) {
	seen := make(map[string]bool)

	it, err := c.base.Iterator(context.Background(), prefix, prefixEnd(prefix))
	if err != nil {
		return nil, fmt.Errorf("prefix scan failed: %w", err)
	}
	defer it.Close()
	for it.Next() {
		k := it.Key()
		if !bytes.HasPrefix(k, prefix) {
			break
		}
		seen[string(k)] = true
	}
	if err := it.Error(); err != nil {
		return nil, err
	}

	for k, entry := range c.items {
		if !bytes.HasPrefix([]byte(k), prefix) {
			continue
		}
		if entry.action == ActionErase {
			delete(seen, k)
		} else {
			seen[k] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}

// prefixEnd returns the smallest key greater than every key with the prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Commit flushes all buffered changes to the base store as one atomic batch.
func (c *ChangeSet) Commit() error {
	ops := make([]keyvalue.BatchOperation, 0, len(c.items))

	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		entry := c.items[k]
		switch entry.action {
		case ActionCache:
			continue
		case ActionErase:
			ops = append(ops, keyvalue.BatchOperation{Type: keyvalue.BatchDelete, Key: []byte(k)})
		default:
			ops = append(ops, keyvalue.BatchOperation{Type: keyvalue.BatchPut, Key: []byte(k), Value: entry.current})
		}
	}

	if len(ops) == 0 {
		c.items = make(map[string]*trackedEntry)
		return nil
	}
	if err := c.base.Batch(context.Background(), ops); err != nil {
		return err
	}
	c.items = make(map[string]*trackedEntry)
	return nil
}

// Discard drops every buffered change.
func (c *ChangeSet) Discard() {
	c.items = make(map[string]*trackedEntry)
}

// PendingWrites reports how many entries would be written on commit.
func (c *ChangeSet) PendingWrites() int {
	n := 0
	for _, entry := range c.items {
		if entry.action != ActionCache {
			n++
		}
	}
	return n
}
