// Package genesis maintains access to the genesis file which holds the
// consensus parameters the chain is created with.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

// Default values used when the genesis file doesn't provide them.
const (
	DefaultDifficulty     = 2
	DefaultTargetInterval = 30_000
	DefaultMiningReward   = 534
)

// Genesis represents the genesis file.
type Genesis struct {
	Date              time.Time        `json:"date"`
	ChainID           uint16           `json:"chain_id"`                                             // The chain id represents an unique id for this running instance.
	Data              string           `json:"data"`                                                 // Payload recorded in the genesis block.
	Difficulty        uint             `json:"difficulty" validate:"gte=1,lte=64"`                   // Starting number of leading zeros for the work problem.
	TargetIntervalMS  int64            `json:"target_interval_ms" validate:"gt=0"`                   // Desired time to mine a block in milliseconds.
	MiningReward      int64            `json:"mining_reward" validate:"gt=0"`                        // Reward for mining a block.
	RequireSignatures bool             `json:"require_signatures"`                                   // Transactions other than rewards must be signed.
	EnforceBalances   bool             `json:"enforce_balances"`                                     // Senders must hold the value they send.
	Balances          map[string]int64 `json:"balances" validate:"dive,keys,required,endkeys,gte=0"` // Starting balances.
}

// New constructs a genesis value with the default consensus parameters.
func New(data string) Genesis {
	return Genesis{
		Date:             time.Now().UTC(),
		Data:             data,
		Difficulty:       DefaultDifficulty,
		TargetIntervalMS: DefaultTargetInterval,
		MiningReward:     DefaultMiningReward,
	}
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the consensus parameters are usable.
func (g Genesis) Validate() error {
	if err := validate.Struct(g); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}

		errs := make([]error, len(verrs))
		for i, verr := range verrs {
			errs[i] = fmt.Errorf("genesis field %s: value %v fails %q", verr.Namespace(), verr.Value(), verr.Tag())
		}
		return errors.Join(errs...)
	}

	return nil
}

// TargetInterval returns the target block interval as a duration.
func (g Genesis) TargetInterval() time.Duration {
	return time.Duration(g.TargetIntervalMS) * time.Millisecond
}

// Accounts returns the accounts with starting balances in a stable order.
func (g Genesis) Accounts() []string {
	accounts := make([]string, 0, len(g.Balances))
	for account := range g.Balances {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	return accounts
}

// =============================================================================

// validate holds the settings and caches for validating the genesis values.
var validate = validator.New(validator.WithRequiredStructEnabled())
