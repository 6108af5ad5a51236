package state

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// maxDifficulty is the number of hex characters in a hash. A difficulty
// above this can never be solved.
const maxDifficulty = 64

// =============================================================================

// MineNewBlock creates the next block in the chain. The block holds the
// mining reward for the beneficiary followed by the transactions in the
// mempool. It is linked to the latest block before the proof of work is
// performed, so the hash that is solved is the hash that is stored. This can
// be cancelled through the context, in which case the block is discarded.
func (s *State) MineNewBlock(ctx context.Context, beneficiaryID database.AccountID) (database.Block, error) {
	if beneficiaryID == "" {
		return database.Block{}, fmt.Errorf("%w: beneficiary account is empty", database.ErrInvalidTransaction)
	}

	// Only one block can be mined at a time. Waiting for the current
	// mining operation to finish can be abandoned through the context.
	select {
	case s.mining <- struct{}{}:
		defer func() { <-s.mining }()
	case <-ctx.Done():
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: snapshot mempool")

	trans := s.mempool.Copy()

	var latest database.Block
	var difficulty uint
	s.mu.RLock()
	{
		latest = s.blocks[len(s.blocks)-1]
		difficulty = s.difficulty
	}
	s.mu.RUnlock()

	reward := database.NewRewardTx(beneficiaryID.Canonical(), s.genesis.MiningReward)

	block := database.NewBlock(uint64(time.Now().UTC().UnixMilli()), append([]database.Tx{reward}, trans...))
	block.Number = latest.Number + 1
	block.PrevBlockHash = latest.Hash

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: txs[%d]: difficulty[%d]", block.Number, len(block.Trans), difficulty)

	start := time.Now()
	switch s.maxMineAttempts {
	case 0:
		if err := block.Mine(ctx, difficulty, s.evHandler); err != nil {
			return database.Block{}, err
		}
	default:
		if err := block.MineBounded(ctx, difficulty, s.maxMineAttempts, s.evHandler); err != nil {
			return database.Block{}, err
		}
	}
	elapsed := time.Since(start)

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state: duration[%v]", elapsed)

	var next uint
	s.mu.Lock()
	{
		s.blocks = append(s.blocks, block.Clone())
		s.accounts.ApplyBlock(block)
		s.mempool.DeleteFirst(len(trans))
		s.difficulty = retarget(difficulty, elapsed, s.genesis.TargetInterval())
		next = s.difficulty
	}
	s.mu.Unlock()

	s.evHandler("viewer: block: number[%d]: hash[%s]: nonce[%d]", block.Number, block.Hash, block.Nonce)
	s.blockHandler(block.Clone(), next)

	return block.Clone(), nil
}

// =============================================================================

// retarget adjusts the difficulty based on how long the last block took to
// mine. Faster than the target raises the difficulty by one, otherwise it is
// lowered by one but never below one.
func retarget(difficulty uint, elapsed time.Duration, target time.Duration) uint {
	if elapsed < target {
		// Past 64 no hash can be solved, so a fast mine at the cap stays put.
		return min(difficulty+1, maxDifficulty)
	}

	if difficulty <= 1 {
		return 1
	}

	return difficulty - 1
}
