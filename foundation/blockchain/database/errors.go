package database

import (
	"errors"
	"fmt"
)

// Set of error variables for the ledger. Callers should use errors.Is to
// check for these conditions since they are normally wrapped with details.
var (
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrSigning             = errors.New("signing failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrChainIntegrity      = errors.New("chain integrity violated")
	ErrEmptyChain          = errors.New("chain has no blocks")
	ErrMiningExhausted     = errors.New("mining attempts exhausted")
)

// ChainIntegrityError reports the first block found to break the chain.
type ChainIntegrityError struct {
	Number uint64
	Reason string
}

// Error implements the error interface.
func (cie *ChainIntegrityError) Error() string {
	return fmt.Sprintf("%s: block[%d]: %s", ErrChainIntegrity, cie.Number, cie.Reason)
}

// Unwrap allows errors.Is to match ErrChainIntegrity.
func (cie *ChainIntegrityError) Unwrap() error {
	return ErrChainIntegrity
}
