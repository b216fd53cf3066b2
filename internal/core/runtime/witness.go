package runtime

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/phantasma-io/go-phantasma/internal/core/types"
)

// Witness admission: before a transaction executes, each attached signature
// is checked against the transaction digest and resolved to the address it
// proves. The resulting address set is what Runtime.IsWitness consults.

var (
	ErrBadWitnessSignature = errors.New("witness signature is invalid")
	ErrBadWitnessKey       = errors.New("witness public key is malformed")
)

// WitnessProof is one signature attached to a transaction.
type WitnessProof struct {
	PubKey    []byte // compressed secp256k1 public key
	Signature []byte // DER-encoded ECDSA signature over the tx digest
}

// VerifyWitness checks the proof against the transaction digest and returns
// the address it authorizes.
func VerifyWitness(txDigest [32]byte, proof WitnessProof) (types.Address, error) {
	pub, err := secp256k1.ParsePubKey(proof.PubKey)
	if err != nil {
		return types.Address{}, ErrBadWitnessKey
	}
	sig, err := secpecdsa.ParseDERSignature(proof.Signature)
	if err != nil {
		return types.Address{}, ErrBadWitnessSignature
	}
	if !sig.Verify(txDigest[:], pub) {
		return types.Address{}, ErrBadWitnessSignature
	}
	return types.AddressFromPubKey(pub.SerializeCompressed()), nil
}

// ResolveWitnesses verifies every proof, returning the authorized address
// set. One bad proof rejects the whole transaction.
func ResolveWitnesses(txDigest [32]byte, proofs []WitnessProof) ([]types.Address, error) {
	out := make([]types.Address, 0, len(proofs))
	for _, p := range proofs {
		addr, err := VerifyWitness(txDigest, p)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// SignWitness produces a proof for the digest with the given private key.
// Used by the test harness and tooling.
func SignWitness(txDigest [32]byte, priv *secp256k1.PrivateKey) WitnessProof {
	sig := secpecdsa.Sign(priv, txDigest[:])
	return WitnessProof{
		PubKey:    priv.PubKey().SerializeCompressed(),
		Signature: sig.Serialize(),
	}
}

// TxDigest hashes the canonical transaction payload bytes.
func TxDigest(payload []byte) [32]byte {
	return sha256.Sum256(payload)
}
