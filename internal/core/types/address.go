package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Address identifies an account or a native contract on the chain.
// User addresses are derived from a public key; contract addresses are
// derived from the contract name, so they can never collide with a key.
type Address [20]byte

// Address derivation prefixes. User and system addresses hash different
// domain separators so the two spaces are disjoint.
const (
	addrPrefixUser   = 0x01
	addrPrefixSystem = 0x02
)

var ErrInvalidAddress = errors.New("invalid address")

// AddressFromPubKey derives a user address from a serialized public key.
func AddressFromPubKey(pubKey []byte) Address {
	h := sha256.Sum256(append([]byte{addrPrefixUser}, pubKey...))
	var a Address
	copy(a[:], h[:20])
	return a
}

// ContractAddress derives the address owned by a named native contract.
func ContractAddress(name string) Address {
	h := sha256.Sum256(append([]byte{addrPrefixSystem}, name...))
	var a Address
	copy(a[:], h[:20])
	return a
}

// TokenContractAddress derives the on-chain address of a token contract.
func TokenContractAddress(symbol string) Address {
	return ContractAddress("token." + symbol)
}

// AddressFromString parses the hex form produced by String.
func AddressFromString(s string) (Address, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 20 {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsNull reports whether the address is the zero value.
func (a Address) IsNull() bool {
	return a == Address{}
}

// Compare orders addresses lexicographically by their raw bytes.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}
