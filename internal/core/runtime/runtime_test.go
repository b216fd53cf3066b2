package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
	"github.com/phantasma-io/go-phantasma/internal/storage/keyvalue"
)

func newRuntime(witnesses ...types.Address) *Runtime {
	return New(Config{
		ChangeSet: state.NewChangeSet(keyvalue.NewMemoryStore()),
		BlockTime: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Height:    7,
		Witnesses: witnesses,
	})
}

func TestWitnessChecks(t *testing.T) {
	alice := types.AddressFromPubKey([]byte("alice"))
	bob := types.AddressFromPubKey([]byte("bob"))

	rt := newRuntime(alice)
	assert.True(t, rt.IsWitness(alice))
	assert.False(t, rt.IsWitness(bob))
	assert.NoError(t, rt.ExpectWitness(alice))
	assert.ErrorIs(t, rt.ExpectWitness(bob), ErrNotWitness)
}

func TestGenerateUIDIsMonotonicAndPersistent(t *testing.T) {
	store := keyvalue.NewMemoryStore()

	cs := state.NewChangeSet(store)
	rt := New(Config{ChangeSet: cs, Height: 1})
	a, err := rt.GenerateUID()
	require.NoError(t, err)
	b, err := rt.GenerateUID()
	require.NoError(t, err)
	assert.Equal(t, a+1, b)
	require.NoError(t, cs.Commit())

	// A later transaction continues, never reuses.
	rt2 := New(Config{ChangeSet: state.NewChangeSet(store), Height: 2})
	c, err := rt2.GenerateUID()
	require.NoError(t, err)
	assert.Equal(t, b+1, c)
}

func TestGovernanceDefaultsAndOverrides(t *testing.T) {
	rt := newRuntime()
	assert.EqualValues(t, 3, rt.GetGovernanceValue(GovExchangeDexDefaultFee))
	assert.EqualValues(t, 75, rt.GetGovernanceValue(GovExchangeDexPoolPercent))
	assert.EqualValues(t, 3, rt.GetGovernanceValue(GovExchangeMaxOTCOrders))
	assert.EqualValues(t, 18, rt.GetGovernanceValue(GovMaxTokenDecimals))

	rt.SetGovernanceValue(GovExchangeMaxOTCOrders, 5)
	assert.EqualValues(t, 5, rt.GetGovernanceValue(GovExchangeMaxOTCOrders))
}

func TestNotifyCollectsEvents(t *testing.T) {
	alice := types.AddressFromPubKey([]byte("alice"))
	rt := newRuntime(alice)

	rt.Notify(EventOrderCreated, alice, "exchange", []byte("data"))
	rt.Notify(EventOrderClosed, alice, "exchange", nil)

	events := rt.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventOrderCreated, events[0].Kind)
	assert.Equal(t, "OrderCreated", events[0].Kind.String())
	assert.Equal(t, alice, events[0].Address)
}
