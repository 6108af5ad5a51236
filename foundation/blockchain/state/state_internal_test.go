package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

func Test_Tamper(t *testing.T) {
	st, err := New(Config{Genesis: genesis.Genesis{Data: "init", Difficulty: 1, TargetIntervalMS: 30_000, MiningReward: 534}})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}

	tx, err := database.NewTx(0, "alice", "bob", 10, "")
	if err != nil {
		t.Fatalf("Should be able to construct a transaction: %v", err)
	}
	if err := st.SubmitTransaction(tx); err != nil {
		t.Fatalf("Should be able to submit the transaction: %v", err)
	}
	if _, err := st.MineNewBlock(context.Background(), "bob"); err != nil {
		t.Fatalf("Should be able to mine: %v", err)
	}

	if !st.IsValid() {
		t.Fatalf("Should have a valid chain before tampering: %v", st.Validate())
	}

	// Simulate corruption of an appended block without rehashing it.
	st.blocks[1].Trans[1].Amount = 1_000_000

	err = st.Validate()
	if !errors.Is(err, database.ErrChainIntegrity) {
		t.Fatalf("Should detect the tampered amount: %v", err)
	}

	var cie *database.ChainIntegrityError
	if !errors.As(err, &cie) || cie.Number != 1 {
		t.Fatalf("Should report block 1: %v", err)
	}

	if st.IsValid() {
		t.Fatalf("Should not be valid after tampering.")
	}
}

func Test_EmptyChain(t *testing.T) {
	var st State
	st.evHandler = func(string, ...any) {}

	if _, err := st.RetrieveLatestBlock(); !errors.Is(err, database.ErrEmptyChain) {
		t.Fatalf("Should get an empty chain error: %v", err)
	}

	if st.IsValid() {
		t.Fatalf("Should not validate an empty chain.")
	}
}

func Test_Retarget(t *testing.T) {
	type table struct {
		name       string
		difficulty uint
		elapsed    time.Duration
		exp        uint
	}

	target := 30 * time.Second

	tt := []table{
		{name: "fast", difficulty: 2, elapsed: time.Second, exp: 3},
		{name: "slow", difficulty: 3, elapsed: time.Minute, exp: 2},
		{name: "exact", difficulty: 3, elapsed: target, exp: 2},
		{name: "floor", difficulty: 1, elapsed: time.Minute, exp: 1},
		{name: "ceiling", difficulty: maxDifficulty, elapsed: time.Second, exp: maxDifficulty},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			if got := retarget(tst.difficulty, tst.elapsed, target); got != tst.exp {
				t.Fatalf("got %d, exp %d", got, tst.exp)
			}
		})
	}
}
