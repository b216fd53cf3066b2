package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantasma-io/go-phantasma/internal/storage/keyvalue"
)

func TestChangeSetBuffersWrites(t *testing.T) {
	store := keyvalue.NewMemoryStore()
	cs := NewChangeSet(store)

	cs.Put([]byte("a"), []byte("1"))
	got, err := cs.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	// Nothing hits the store before Commit.
	_, err = store.Read(context.Background(), []byte("a"))
	assert.ErrorIs(t, err, keyvalue.ErrKeyNotFound)

	require.NoError(t, cs.Commit())
	raw, err := store.Read(context.Background(), []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), raw)
}

func TestChangeSetDiscard(t *testing.T) {
	store := keyvalue.NewMemoryStore()
	require.NoError(t, store.Write(context.Background(), []byte("a"), []byte("old")))

	cs := NewChangeSet(store)
	cs.Put([]byte("a"), []byte("new"))
	cs.Put([]byte("b"), []byte("2"))
	cs.Discard()

	raw, err := store.Read(context.Background(), []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), raw)
	_, err = store.Read(context.Background(), []byte("b"))
	assert.ErrorIs(t, err, keyvalue.ErrKeyNotFound)
}

func TestChangeSetReadsThroughToBase(t *testing.T) {
	store := keyvalue.NewMemoryStore()
	require.NoError(t, store.Write(context.Background(), []byte("k"), []byte("v")))

	cs := NewChangeSet(store)
	got, err := cs.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	ok, err := cs.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)

	// A missing key reads as nil, not an error.
	got, err = cs.Get([]byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChangeSetDelete(t *testing.T) {
	store := keyvalue.NewMemoryStore()
	require.NoError(t, store.Write(context.Background(), []byte("k"), []byte("v")))

	cs := NewChangeSet(store)
	cs.Delete([]byte("k"))

	got, err := cs.Get([]byte("k"))
	require.NoError(t, err)
	assert.Nil(t, got)
	ok, err := cs.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cs.Commit())
	_, err = store.Read(context.Background(), []byte("k"))
	assert.ErrorIs(t, err, keyvalue.ErrKeyNotFound)
}

func TestChangeSetScanPrefixMergesOverlay(t *testing.T) {
	store := keyvalue.NewMemoryStore()
	require.NoError(t, store.Write(context.Background(), []byte("p/a"), []byte("1")))
	require.NoError(t, store.Write(context.Background(), []byte("p/b"), []byte("2")))
	require.NoError(t, store.Write(context.Background(), []byte("q/x"), []byte("9")))

	cs := NewChangeSet(store)
	cs.Put([]byte("p/c"), []byte("3"))   // new in overlay
	cs.Put([]byte("p/b"), []byte("22")) // modified in overlay
	cs.Delete([]byte("p/a"))            // erased in overlay

	keys, err := cs.ScanPrefix([]byte("p/"))
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, []byte("p/b"), keys[0])
	assert.Equal(t, []byte("p/c"), keys[1])

	v, err := cs.Get([]byte("p/b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("22"), v)
}

func TestChangeSetCommitIsOrdered(t *testing.T) {
	store := keyvalue.NewMemoryStore()
	cs := NewChangeSet(store)
	cs.Put([]byte("z"), []byte("26"))
	cs.Put([]byte("a"), []byte("1"))
	cs.Delete([]byte("m"))
	assert.Equal(t, 3, cs.PendingWrites())
	require.NoError(t, cs.Commit())
	assert.Equal(t, 0, cs.PendingWrites())
}
