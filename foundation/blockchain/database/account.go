package database

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MintAccountID is the reserved sender for value created by the ledger
// itself, such as mining rewards and genesis allocations. It can't be
// used by a caller submitting a transaction.
const MintAccountID AccountID = "0x0000000000000000000000000000000000000000"

// AccountID represents an identity that sends and receives value on the
// ledger. It is opaque to the ledger unless transactions are signed, in which
// case it must be the address derived from the signer's public key. Hex
// addresses are always held in their checksummed form.
type AccountID string

// ToAccountID converts a string into an account id. A hex address is
// converted to its checksummed form so every casing of the same address is
// the same account. Any other value is used as is.
func ToAccountID(id string) AccountID {
	if common.IsHexAddress(id) {
		return AccountID(common.HexToAddress(id).Hex())
	}

	return AccountID(id)
}

// Canonical returns the account id in the form used for comparisons and
// as a key for balances.
func (a AccountID) Canonical() AccountID {
	return ToAccountID(string(a))
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).String())
}

// IsMint reports whether the account is the reserved mint sender.
func (a AccountID) IsMint() bool {
	return a == MintAccountID
}

// Equals compares two account ids by their canonical form.
func (a AccountID) Equals(other AccountID) bool {
	return a.Canonical() == other.Canonical()
}
