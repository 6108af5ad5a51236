// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Mempool represents a cache of transactions waiting to be mined. The order
// transactions are added is kept since it becomes the order in the block.
type Mempool struct {
	pool []database.Tx
	mu   sync.RWMutex
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// AppendIf adds the transaction only when the check passes. The check runs
// under the pool's lock so it sees a pool nothing else is changing.
func (mp *Mempool) AppendIf(tx database.Tx, check func(pool []database.Tx) error) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if err := check(mp.pool); err != nil {
		return len(mp.pool), err
	}

	mp.pool = append(mp.pool, tx)

	return len(mp.pool), nil
}

// DeleteFirst removes the first n transactions from the pool. These are the
// transactions that were taken for a block that has now been mined.
func (mp *Mempool) DeleteFirst(n int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if n > len(mp.pool) {
		n = len(mp.pool)
	}

	mp.pool = append([]database.Tx(nil), mp.pool[n:]...)
}

// Copy returns a copy of the transactions in the order they were added.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return append([]database.Tx(nil), mp.pool...)
}

// PendingSpend returns the total amount the account is sending in
// transactions that are still waiting to be mined.
func PendingSpend(pool []database.Tx, from database.AccountID) int64 {
	from = from.Canonical()

	var total int64
	for _, tx := range pool {
		if tx.From.Canonical() == from {
			total += tx.Amount
		}
	}

	return total
}

// PendingNonce returns the largest nonce the account has used in signed
// transactions that are still waiting to be mined.
func PendingNonce(pool []database.Tx, from database.AccountID) uint64 {
	from = from.Canonical()

	var nonce uint64
	for _, tx := range pool {
		if tx.IsSigned() && tx.From.Canonical() == from {
			nonce = max(nonce, tx.Nonce)
		}
	}

	return nonce
}
