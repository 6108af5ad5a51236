package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// QueryAccount returns a copy of the account information.
func (s *State) QueryAccount(account database.AccountID) (accounts.Info, error) {
	info, exists := s.accounts.Query(account)
	if !exists {
		return accounts.Info{}, fmt.Errorf("account %s not found", account)
	}

	return info, nil
}

// QueryAccounts returns a copy of the information for all accounts.
func (s *State) QueryAccounts() map[database.AccountID]accounts.Info {
	return s.accounts.Copy()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryChainLength returns the number of blocks including genesis.
func (s *State) QueryChainLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blocks)
}

// QueryBlocks returns a copy of every block in the chain starting with the
// genesis block. Changing the returned blocks has no effect on the chain.
func (s *State) QueryBlocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]database.Block, len(s.blocks))
	for i, block := range s.blocks {
		out[i] = block.Clone()
	}

	return out
}

// QueryBlockByNumber returns a copy of the block at the specified number.
func (s *State) QueryBlockByNumber(number uint64) (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if number == QueryLatest {
		number = uint64(len(s.blocks) - 1)
	}

	if number >= uint64(len(s.blocks)) {
		return database.Block{}, fmt.Errorf("block %d not found, chain has %d blocks", number, len(s.blocks))
	}

	return s.blocks[number].Clone(), nil
}

// QueryBlocksByAccount returns the set of blocks with a transaction sent or
// received by the account. If the account is empty, all blocks are returned.
func (s *State) QueryBlocksByAccount(accountID database.AccountID) []database.Block {
	accountID = accountID.Canonical()

	var out []database.Block

	for _, block := range s.QueryBlocks() {
		for _, tx := range block.Trans {
			if accountID == "" || tx.From == accountID || tx.To == accountID {
				out = append(out, block)
				break
			}
		}
	}

	return out
}
