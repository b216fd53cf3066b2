// Package keyvalue defines the key/value store the chain state is persisted
// in, with a pebble-backed implementation for the node and an in-memory one
// for tests.
package keyvalue

import (
	"context"
	"errors"
)

var (
	ErrStoreClosed = errors.New("store is closed")
	ErrKeyNotFound = errors.New("key not found")
)

// Store is the set of operations every backend must support.
type Store interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies all operations atomically.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator traverses keys in [start, end] in lexicographic order.
	// A nil start begins at the first key; a nil end runs to the last.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)
}

// Iterator walks store entries in key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation is a single put or delete inside an atomic batch.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)
