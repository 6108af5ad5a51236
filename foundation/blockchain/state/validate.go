package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Validate walks the chain from the first block after genesis and checks
// every block was hashed from its own fields and points at its parent.
// The first problem found is returned as a *database.ChainIntegrityError.
// The chain is never changed.
func (s *State) Validate() error {
	return ValidateChain(s.QueryBlocks(), s.evHandler)
}

// IsValid reports whether Validate finds no problem with the chain.
func (s *State) IsValid() bool {
	return s.Validate() == nil
}

// ValidateLedger performs Validate and then replays every transaction to
// check no account ever spent more than it had received.
func (s *State) ValidateLedger() error {
	blocks := s.QueryBlocks()

	if err := ValidateChain(blocks, s.evHandler); err != nil {
		return err
	}

	if _, err := accounts.Replay(blocks, true); err != nil {
		return fmt.Errorf("%w: %w", database.ErrChainIntegrity, err)
	}

	return nil
}

// ValidateChain checks the linkage and hashes of a set of blocks that start
// with the genesis block. It can be used on blocks exported from a node.
func ValidateChain(blocks []database.Block, evHandler func(v string, args ...any)) error {
	if len(blocks) == 0 {
		return database.ErrEmptyChain
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], evHandler); err != nil {
			return err
		}
	}

	return nil
}
