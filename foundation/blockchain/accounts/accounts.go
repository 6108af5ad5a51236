// Package accounts maintains account balances derived from the transactions
// recorded on the chain.
package accounts

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Info represents information stored for an individual account.
type Info struct {
	Balance  int64  `json:"balance"`
	Received int64  `json:"received"`
	Spent    int64  `json:"spent"`
	Nonce    uint64 `json:"nonce"` // Last nonce used by a signed transaction.
}

// Accounts manages data related to accounts who have transacted on
// the blockchain.
type Accounts struct {
	info map[database.AccountID]Info
	mu   sync.RWMutex
}

// New constructs an empty set of accounts.
func New() *Accounts {
	return &Accounts{
		info: make(map[database.AccountID]Info),
	}
}

// Replay constructs the accounts by applying every transaction in the
// blocks in order. When strict is true, replay fails the first time a
// sender spends more than it has received.
func Replay(blocks []database.Block, strict bool) (*Accounts, error) {
	act := New()

	for _, block := range blocks {
		for _, tx := range block.Trans {
			if err := act.ApplyTransaction(tx, strict); err != nil {
				return nil, fmt.Errorf("block[%d]: %w", block.Number, err)
			}
		}
	}

	return act, nil
}

// Copy makes a copy of the current information for all accounts.
func (act *Accounts) Copy() map[database.AccountID]Info {
	act.mu.RLock()
	defer act.mu.RUnlock()

	accounts := make(map[database.AccountID]Info, len(act.info))
	for id, info := range act.info {
		accounts[id] = info
	}
	return accounts
}

// Query returns the information for the specified account and whether the
// account has ever transacted.
func (act *Accounts) Query(id database.AccountID) (Info, bool) {
	act.mu.RLock()
	defer act.mu.RUnlock()

	info, exists := act.info[id.Canonical()]
	return info, exists
}

// Balance returns the current balance for the specified account.
func (act *Accounts) Balance(id database.AccountID) int64 {
	info, _ := act.Query(id)
	return info.Balance
}

// ApplyBlock applies all the transactions in the block. Balances are not
// enforced since a block on the chain has already been accepted.
func (act *Accounts) ApplyBlock(block database.Block) {
	for _, tx := range block.Trans {
		act.ApplyTransaction(tx, false)
	}
}

// ApplyTransaction performs the business logic for applying a transaction
// to the accounts information. Minted value has no sender to debit. When
// strict is true the sender must hold the amount and a signed transaction
// must carry a nonce larger than the last one the sender used.
func (act *Accounts) ApplyTransaction(tx database.Tx, strict bool) error {
	act.mu.Lock()
	defer act.mu.Unlock()

	tx = tx.Canonical()

	if !tx.IsMint() {
		fromInfo := act.info[tx.From]
		if strict && tx.Amount > fromInfo.Balance {
			return fmt.Errorf("%w: %s has %d, needs %d", database.ErrInsufficientBalance, tx.From, fromInfo.Balance, tx.Amount)
		}

		if strict && tx.IsSigned() && tx.Nonce <= fromInfo.Nonce {
			return fmt.Errorf("%w: %s nonce too small, last %d, tx %d", database.ErrInvalidTransaction, tx.From, fromInfo.Nonce, tx.Nonce)
		}

		fromInfo.Balance -= tx.Amount
		fromInfo.Spent += tx.Amount
		if tx.IsSigned() && tx.Nonce > fromInfo.Nonce {
			fromInfo.Nonce = tx.Nonce
		}
		act.info[tx.From] = fromInfo
	}

	if tx.Amount == 0 {
		return nil
	}

	toInfo := act.info[tx.To]
	toInfo.Balance += tx.Amount
	toInfo.Received += tx.Amount
	act.info[tx.To] = toInfo

	return nil
}
