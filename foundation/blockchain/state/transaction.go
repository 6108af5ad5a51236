package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// SubmitTransaction accepts a transaction for inclusion in the next block.
// A nil error means the transaction is in the mempool. Any other error is the
// reason it was rejected and the mempool is left untouched.
func (s *State) SubmitTransaction(tx database.Tx) error {
	tx = tx.Canonical()

	// Hold the read lock so a block can't be appended while this
	// transaction is checked against the balances and the mempool.
	s.mu.RLock()
	defer s.mu.RUnlock()

	check := func(pool []database.Tx) error {
		return s.validateTransaction(tx, pool)
	}

	n, err := s.mempool.AppendIf(tx, check)
	if err != nil {
		s.evHandler("state: SubmitTransaction: REJECTED: tx[%s]: %s", tx, err)
		return err
	}

	s.evHandler("state: SubmitTransaction: ACCEPTED: tx[%s]: mempool[%d]", tx, n)

	if s.autoMine && s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return nil
}

// =============================================================================

// validateTransaction takes the transaction and validates it against the
// current chain and the transactions already waiting in the mempool.
func (s *State) validateTransaction(tx database.Tx, pool []database.Tx) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if tx.IsMint() {
		return fmt.Errorf("%w: the mint account can't send transactions", database.ErrInvalidTransaction)
	}

	if s.genesis.RequireSignatures && !tx.IsSigned() {
		return fmt.Errorf("%w: transaction must be signed by %s", database.ErrInvalidTransaction, tx.From)
	}

	// A signed transaction can only be used once. Its nonce must be larger
	// than any nonce the sender used on the chain or in the mempool.
	if tx.IsSigned() {
		info, _ := s.accounts.Query(tx.From)
		last := max(info.Nonce, mempool.PendingNonce(pool, tx.From))
		if tx.Nonce <= last {
			return fmt.Errorf("%w: %s nonce too small, last %d, tx %d", database.ErrInvalidTransaction, tx.From, last, tx.Nonce)
		}
	}

	if s.genesis.EnforceBalances {
		spendable := s.accounts.Balance(tx.From) - mempool.PendingSpend(pool, tx.From)
		if spendable < tx.Amount {
			return fmt.Errorf("%w: %s can spend %d, needs %d", database.ErrInsufficientBalance, tx.From, spendable, tx.Amount)
		}
	}

	return nil
}
