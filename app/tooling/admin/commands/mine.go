package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"go.uber.org/zap"
)

// Mine builds an in memory ledger from the genesis file and mines n blocks,
// printing how long each took and how the difficulty moved.
func Mine(log *zap.SugaredLogger, path string, n int) error {
	gen, err := genesis.Load(path)
	if err != nil {
		return err
	}

	ev := func(v string, args ...any) {
		log.Debugw(fmt.Sprintf(v, args...))
	}

	st, err := state.New(state.Config{
		BeneficiaryID: "admin",
		Genesis:       gen,
		EvHandler:     ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	for range n {
		start := time.Now()

		block, err := st.MineNewBlock(context.Background(), st.RetrieveBeneficiary())
		if err != nil {
			return err
		}

		fmt.Printf("Block: %d  Difficulty: %d  Nonce: %d  Took: %s  Next: %d\n",
			block.Number, block.Difficulty, block.Nonce, time.Since(start).Round(time.Millisecond), st.RetrieveDifficulty())
	}

	if err := st.ValidateLedger(); err != nil {
		return err
	}
	fmt.Println("Ledger is valid")

	return nil
}
