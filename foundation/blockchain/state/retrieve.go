package state

import (
	"maps"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	gen := s.genesis
	gen.Balances = maps.Clone(s.genesis.Balances)

	return gen
}

// RetrieveBeneficiary returns the account the worker mines for.
func (s *State) RetrieveBeneficiary() database.AccountID {
	return s.beneficiaryID
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.blocks) == 0 {
		return database.Block{}, database.ErrEmptyChain
	}

	return s.blocks[len(s.blocks)-1].Clone(), nil
}

// RetrieveDifficulty returns the difficulty the next block will be mined at.
func (s *State) RetrieveDifficulty() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.difficulty
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}
