// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// BlockHandler defines a function that is called each time a block is
// added to the chain with the difficulty the next block will be mined at.
type BlockHandler func(block database.Block, nextDifficulty uint)

// Config represents the configuration required to start
// the blockchain node. MaxMineAttempts bounds the number of hashes tried
// for a block, zero means mining runs until solved or cancelled.
type Config struct {
	BeneficiaryID   database.AccountID
	AutoMine        bool
	MaxMineAttempts uint64
	Genesis         genesis.Genesis
	EvHandler       EventHandler
	BlockHandler    BlockHandler
}

// State manages the blockchain. Blocks, difficulty and balances are guarded
// by mu. Only one mining operation can run at a time which is guarded by
// the mining semaphore, so a caller waiting its turn can still give up
// through its context. Mining doesn't hold mu while searching for a nonce
// so transactions can still be submitted.
type State struct {
	beneficiaryID   database.AccountID
	autoMine        bool
	maxMineAttempts uint64
	evHandler       EventHandler
	blockHandler    BlockHandler
	genesis         genesis.Genesis

	mu         sync.RWMutex
	blocks     []database.Block
	difficulty uint
	accounts   *accounts.Accounts

	mining  chan struct{}
	mempool *mempool.Mempool

	Worker Worker
}

// New constructs a new blockchain with a genesis block built from the
// genesis information.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	gen := cfg.Genesis
	if gen.Difficulty < 1 {
		gen.Difficulty = 1
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}

	// The genesis block is not mined. It carries the genesis payload
	// followed by any starting balances.
	trans := []database.Tx{database.NewGenesisTx(database.MintAccountID, 0, gen.Data)}
	for _, account := range gen.Accounts() {
		trans = append(trans, database.NewGenesisTx(database.ToAccountID(account), gen.Balances[account], ""))
	}
	genesisBlock := database.NewBlock(uint64(time.Now().UTC().UnixMilli()), trans)

	accounts := accounts.New()
	accounts.ApplyBlock(genesisBlock)

	blk := func(database.Block, uint) {}
	if cfg.BlockHandler != nil {
		blk = cfg.BlockHandler
	}

	state := State{
		beneficiaryID:   cfg.BeneficiaryID.Canonical(),
		autoMine:        cfg.AutoMine,
		maxMineAttempts: cfg.MaxMineAttempts,
		evHandler:       ev,
		blockHandler:    blk,
		genesis:         gen,

		blocks:     []database.Block{genesisBlock},
		difficulty: gen.Difficulty,
		accounts:   accounts,

		mining:  make(chan struct{}, 1),
		mempool: mempool.New(),
	}

	ev("state: New: genesis: blk[%s]: difficulty[%d]: reward[%d]", genesisBlock.Hash, gen.Difficulty, gen.MiningReward)

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
