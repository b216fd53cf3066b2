package testing

import (
	"crypto/sha256"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/phantasma-io/go-phantasma/internal/core/runtime"
	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// Account is a test identity with a deterministic keypair derived from its
// name, so scenarios are reproducible across runs.
type Account struct {
	Name    string
	Key     *secp256k1.PrivateKey
	Address types.Address
}

// NewAccount derives an account from a name.
func NewAccount(t *testing.T, name string) *Account {
	t.Helper()
	seed := sha256.Sum256([]byte("phantasma-test-account/" + name))
	key := secp256k1.PrivKeyFromBytes(seed[:])
	return &Account{
		Name:    name,
		Key:     key,
		Address: types.AddressFromPubKey(key.PubKey().SerializeCompressed()),
	}
}

// Sign produces a witness proof over a transaction digest.
func (a *Account) Sign(digest [32]byte) runtime.WitnessProof {
	return runtime.SignWitness(digest, a.Key)
}
