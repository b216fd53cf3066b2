// Package pebble implements the chain's key/value store on cockroachdb/pebble.
package pebble

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/phantasma-io/go-phantasma/internal/storage/keyvalue"
)

type Store struct {
	db *pebble.DB
}

func NewStore(db *pebble.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Read(_ context.Context, key []byte) ([]byte, error) {
	if s.db == nil {
		return nil, keyvalue.ErrStoreClosed
	}
	val, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, keyvalue.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *Store) Write(_ context.Context, key, value []byte) error {
	if s.db == nil {
		return keyvalue.ErrStoreClosed
	}
	return s.db.Set(key, value, pebble.Sync)
}

func (s *Store) Delete(_ context.Context, key []byte) error {
	if s.db == nil {
		return keyvalue.ErrStoreClosed
	}
	return s.db.Delete(key, pebble.Sync)
}

func (s *Store) Batch(_ context.Context, ops []keyvalue.BatchOperation) error {
	if s.db == nil {
		return keyvalue.ErrStoreClosed
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		switch op.Type {
		case keyvalue.BatchPut:
			if err := batch.Set(op.Key, op.Value, nil); err != nil {
				return err
			}
		case keyvalue.BatchDelete:
			if err := batch.Delete(op.Key, nil); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}

	return batch.Commit(pebble.Sync)
}

type iterator struct {
	iter       *pebble.Iterator
	start, end []byte
	current    struct {
		key, value []byte
	}
}

func (s *Store) Iterator(_ context.Context, start, end []byte) (keyvalue.Iterator, error) {
	if s.db == nil {
		return nil, keyvalue.ErrStoreClosed
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
	})
	if err != nil {
		return nil, err
	}

	return &iterator{iter: iter, start: start, end: end}, nil
}

func (it *iterator) Next() bool {
	if it.current.key == nil {
		if it.start == nil {
			it.iter.First()
		} else {
			it.iter.SeekGE(it.start)
		}
	} else {
		it.iter.Next()
	}

	if !it.iter.Valid() {
		return false
	}

	key := it.iter.Key()
	if it.end != nil && bytes.Compare(key, it.end) > 0 {
		return false
	}

	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	val := it.iter.Value()
	valCopy := make([]byte, len(val))
	copy(valCopy, val)

	it.current.key = keyCopy
	it.current.value = valCopy
	return true
}

func (it *iterator) Key() []byte {
	return it.current.key
}

func (it *iterator) Value() []byte {
	return it.current.value
}

func (it *iterator) Error() error {
	return it.iter.Error()
}

func (it *iterator) Close() error {
	return it.iter.Close()
}
