package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together.
type Block struct {
	Number        uint64 `json:"number"`          // Position of the block in the chain, genesis is 0.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	TimeStamp     uint64 `json:"timestamp"`       // Time the block was created in unix milliseconds.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
	Difficulty    uint   `json:"difficulty"`      // Number of 0's needed to solve the hash solution.
	Hash          string `json:"hash"`            // Hash over the previous hash, timestamp, transactions and nonce.
	Trans         []Tx   `json:"trans"`           // Ordered set of transactions, the order is part of the hash.
}

// NewBlock constructs an unsealed block. The hash is computed from the
// starting fields and won't satisfy any difficulty until the block is mined.
func NewBlock(timeStamp uint64, trans []Tx) Block {
	b := Block{
		TimeStamp: timeStamp,
		Trans:     append([]Tx(nil), trans...),
	}
	b.Hash = b.ComputeHash()

	return b
}

// ComputeHash returns the hash for the current fields of the block.
func (b Block) ComputeHash() string {
	hi := hashInput{
		PrevBlockHash: b.PrevBlockHash,
		TimeStamp:     b.TimeStamp,
		Trans:         b.Trans,
		Nonce:         b.Nonce,
	}

	return signature.Hash(hi)
}

// IsSealed reports whether the stored hash matches the block's fields.
func (b Block) IsSealed() bool {
	return b.Hash == b.ComputeHash()
}

// Clone returns a copy of the block that shares no memory with the original.
func (b Block) Clone() Block {
	b.Trans = append([]Tx(nil), b.Trans...)
	return b
}

// Mine does the work of finding a nonce that produces a hash with the
// required number of leading zeros. It runs until solved or the context is
// cancelled. Pointer semantics are being used since a nonce is being
// discovered.
func (b *Block) Mine(ctx context.Context, difficulty uint, ev func(v string, args ...any)) error {
	return b.performPOW(ctx, difficulty, 0, ev)
}

// MineBounded is like Mine but gives up after maxAttempts hashes with
// ErrMiningExhausted.
func (b *Block) MineBounded(ctx context.Context, difficulty uint, maxAttempts uint64, ev func(v string, args ...any)) error {
	return b.performPOW(ctx, difficulty, maxAttempts, ev)
}

// ValidateBlock takes a block and validates it against its parent. It checks
// the hash was computed from the block's own fields, the block points at the
// parent's hash and the proof of work is solved.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Number)

	if nextNumber := previousBlock.Number + 1; b.Number != nextNumber {
		return &ChainIntegrityError{Number: b.Number, Reason: fmt.Sprintf("block number is not the next number, got %d, exp %d", b.Number, nextNumber)}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash matches block fields", b.Number)

	if hash := b.ComputeHash(); b.Hash != hash {
		return &ChainIntegrityError{Number: b.Number, Reason: fmt.Sprintf("stored hash doesn't match block fields, got %s, exp %s", b.Hash, hash)}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Number)

	if b.PrevBlockHash != previousBlock.Hash {
		return &ChainIntegrityError{Number: b.Number, Reason: fmt.Sprintf("parent block hash doesn't match our known parent, got %s, exp %s", b.PrevBlockHash, previousBlock.Hash)}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Number)

	if !IsHashSolved(b.Difficulty, b.Hash) {
		return &ChainIntegrityError{Number: b.Number, Reason: fmt.Sprintf("hash %s doesn't solve difficulty %d", b.Hash, b.Difficulty)}
	}

	return nil
}

// IsHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func IsHashSolved(difficulty uint, hash string) bool {
	if int(difficulty) > len(hash) {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}

// =============================================================================

// hashInput defines the canonical field order used to hash a block.
type hashInput struct {
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Trans         []Tx   `json:"trans"`
	Nonce         uint64 `json:"nonce"`
}

// performPOW increments the nonce until the hash is solved. A maxAttempts
// of zero means there is no limit. On failure the block is put back to the
// state it was in before mining started.
func (b *Block) performPOW(ctx context.Context, difficulty uint, maxAttempts uint64, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: difficulty[%d]", difficulty)
	defer ev("database: PerformPOW: MINING: completed")

	for _, tx := range b.Trans {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	startNonce := b.Nonce
	reset := func() {
		b.Nonce = startNonce
		b.Hash = b.ComputeHash()
	}

	b.Difficulty = difficulty
	b.Hash = b.ComputeHash()

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		// Did we get asked to stop trying to solve the problem.
		if err := ctx.Err(); err != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			reset()
			return err
		}

		if IsHashSolved(difficulty, b.Hash) {
			ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.PrevBlockHash, b.Hash, attempts)
			return nil
		}

		if maxAttempts > 0 && attempts >= maxAttempts {
			ev("database: PerformPOW: MINING: EXHAUSTED: attempts[%d]", attempts)
			reset()
			return fmt.Errorf("%w: %d attempts at difficulty %d", ErrMiningExhausted, attempts, difficulty)
		}

		b.Nonce++
		b.Hash = b.ComputeHash()
	}
}
