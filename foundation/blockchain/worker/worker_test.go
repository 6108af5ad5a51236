package worker_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ardanlabs/powledger/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func newState(t *testing.T, difficulty uint, blk state.BlockHandler) *state.State {
	log, err := logger.New("TEST")
	ifErrFailNow(t, err)
	t.Cleanup(func() { log.Sync() })

	ev := func(v string, args ...any) {
		log.Debugf(v, args...)
	}

	st, err := state.New(state.Config{
		BeneficiaryID: "miner",
		AutoMine:      true,
		Genesis: genesis.Genesis{
			Data:             "init",
			Difficulty:       difficulty,
			TargetIntervalMS: 30_000,
			MiningReward:     534,
		},
		EvHandler:    ev,
		BlockHandler: blk,
	})
	ifErrFailNow(t, err)

	return st
}

func Test_AutoMine(t *testing.T) {
	var mined atomic.Int32
	var next atomic.Uint32
	blk := func(block database.Block, nextDifficulty uint) {
		mined.Add(1)
		next.Store(uint32(nextDifficulty))
	}

	st := newState(t, 1, blk)
	worker.Run(st, func(string, ...any) {})
	defer st.Shutdown()

	t.Log("Given the need to mine in the background.")
	{
		tx, err := database.NewTx(0, "alice", "bob", 10, "")
		ifErrFailNow(t, err)
		ifErrFailNow(t, st.SubmitTransaction(tx))

		deadline := time.Now().Add(10 * time.Second)
		for mined.Load() < 1 {
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould mine the submitted transaction.", failed)
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Logf("\t%s\tShould mine the submitted transaction.", success)

		block, err := st.RetrieveLatestBlock()
		ifErrFailNow(t, err)

		if block.Trans[0].To != "miner" {
			t.Fatalf("\t%s\tShould pay the node beneficiary: %s", failed, block.Trans[0].To)
		}
		t.Logf("\t%s\tShould pay the node beneficiary.", success)

		if !st.IsValid() {
			t.Fatalf("\t%s\tShould have a valid chain.", failed)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)

		if st.QueryChainLength() != 2 || mined.Load() != 1 || uint(next.Load()) != st.RetrieveDifficulty() {
			t.Fatalf("\t%s\tShould report the mined block: blocks[%d] next[%d]", failed, mined.Load(), next.Load())
		}
		t.Logf("\t%s\tShould report the mined block.", success)
	}
}

func Test_ShutdownCancelsMining(t *testing.T) {
	st := newState(t, 64, nil)
	worker.Run(st, func(string, ...any) {})

	t.Log("Given the need to stop mining on shutdown.")
	{
		tx, err := database.NewTx(0, "alice", "bob", 10, "")
		ifErrFailNow(t, err)
		ifErrFailNow(t, st.SubmitTransaction(tx))

		// Give the worker a moment to start mining.
		time.Sleep(50 * time.Millisecond)

		done := make(chan struct{})
		go func() {
			st.Shutdown()
			close(done)
		}()

		select {
		case <-done:
			t.Logf("\t%s\tShould shut down while mining.", success)
		case <-time.After(10 * time.Second):
			t.Fatalf("\t%s\tShould shut down while mining.", failed)
		}

		if st.QueryChainLength() != 1 || st.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould discard the unfinished block.", failed)
		}
		t.Logf("\t%s\tShould discard the unfinished block.", success)
	}
}
