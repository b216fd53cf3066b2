package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantasma-io/go-phantasma/internal/core/state"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
	"github.com/phantasma-io/go-phantasma/internal/storage/keyvalue"
)

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(state.NewChangeSet(keyvalue.NewMemoryStore()))
}

func addr(name string) types.Address {
	return types.AddressFromPubKey([]byte(name))
}

func TestRegisterToken(t *testing.T) {
	l := newLedger(t)
	err := l.Register(Token{Symbol: "SOUL", Name: "Phantasma Stake", Decimals: 8,
		Flags: FlagFungible | FlagTransferable | FlagStakable})
	require.NoError(t, err)

	assert.True(t, l.Exists("SOUL"))
	assert.False(t, l.Exists("KCAL"))

	got, err := l.Get("SOUL")
	require.NoError(t, err)
	assert.Equal(t, "Phantasma Stake", got.Name)
	assert.Equal(t, 8, got.Decimals)
	assert.True(t, got.Flags.Has(FlagStakable))
	assert.False(t, got.Flags.Has(FlagFuel))

	// Duplicate registration is rejected.
	err = l.Register(Token{Symbol: "SOUL", Name: "Again", Decimals: 8, Flags: FlagFungible})
	assert.Error(t, err)
}

func TestRegisterTokenSymbolValidation(t *testing.T) {
	l := newLedger(t)
	for _, sym := range []string{"", "A", "lower", "TOOLONGSYMBOL", "SO-UL"} {
		err := l.Register(Token{Symbol: sym, Name: "x", Decimals: 8, Flags: FlagFungible})
		assert.Error(t, err, "symbol %q", sym)
	}
}

func TestMintAndTransfer(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.Register(Token{Symbol: "SOUL", Name: "s", Decimals: 8,
		Flags: FlagFungible | FlagTransferable}))

	alice, bob := addr("alice"), addr("bob")
	require.NoError(t, l.Mint("SOUL", alice, big.NewInt(1000)))

	bal, err := l.BalanceOf("SOUL", alice)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, bal.Int64())

	require.NoError(t, l.Transfer("SOUL", alice, bob, big.NewInt(300)))
	aliceBal, _ := l.BalanceOf("SOUL", alice)
	bobBal, _ := l.BalanceOf("SOUL", bob)
	assert.EqualValues(t, 700, aliceBal.Int64())
	assert.EqualValues(t, 300, bobBal.Int64())

	// Overdraft fails and leaves balances untouched.
	err = l.Transfer("SOUL", bob, alice, big.NewInt(301))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	bobBal, _ = l.BalanceOf("SOUL", bob)
	assert.EqualValues(t, 300, bobBal.Int64())
}

func TestTransferValidation(t *testing.T) {
	l := newLedger(t)
	require.NoError(t, l.Register(Token{Symbol: "SOUL", Name: "s", Decimals: 8,
		Flags: FlagFungible | FlagTransferable}))
	alice := addr("alice")
	require.NoError(t, l.Mint("SOUL", alice, big.NewInt(10)))

	assert.Error(t, l.Transfer("SOUL", alice, addr("bob"), big.NewInt(0)))
	assert.Error(t, l.Transfer("SOUL", alice, addr("bob"), big.NewInt(-5)))
	// Transfer to self is a no-op.
	require.NoError(t, l.Transfer("SOUL", alice, alice, big.NewInt(5)))
	bal, _ := l.BalanceOf("SOUL", alice)
	assert.EqualValues(t, 10, bal.Int64())
}

func TestNFTLifecycle(t *testing.T) {
	l := newLedger(t)
	alice, bob := addr("alice"), addr("bob")

	require.NoError(t, l.MintNFT("LP", 7, alice, []byte("rom"), []byte("ram")))
	assert.True(t, l.NFTExists("LP", 7))

	nft, err := l.ReadNFT("LP", 7)
	require.NoError(t, err)
	assert.Equal(t, alice, nft.Owner)
	assert.Equal(t, []byte("rom"), nft.ROM)
	assert.Equal(t, []byte("ram"), nft.RAM)

	// Duplicate id in the same series is rejected.
	assert.Error(t, l.MintNFT("LP", 7, bob, nil, nil))

	require.NoError(t, l.WriteNFTRAM("LP", 7, []byte("ram2")))
	nft, _ = l.ReadNFT("LP", 7)
	assert.Equal(t, []byte("ram2"), nft.RAM)

	require.NoError(t, l.MintNFT("LP", 9, alice, nil, nil))
	ids, err := l.NFTsOf("LP", alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7, 9}, ids)

	require.NoError(t, l.BurnNFT("LP", 7))
	assert.False(t, l.NFTExists("LP", 7))
	ids, _ = l.NFTsOf("LP", alice)
	assert.Equal(t, []uint64{9}, ids)
	_, err = l.ReadNFT("LP", 7)
	assert.Error(t, err)
}
