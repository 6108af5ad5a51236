// Package commands contains the functionality for the admin tooling.
package commands

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// Genesis loads the genesis file, validates it and prints the parameters.
func Genesis(path string) error {
	gen, err := genesis.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("Date:               %s\n", gen.Date)
	fmt.Printf("ChainID:            %d\n", gen.ChainID)
	fmt.Printf("Data:               %s\n", gen.Data)
	fmt.Printf("Difficulty:         %d\n", gen.Difficulty)
	fmt.Printf("TargetInterval:     %s\n", gen.TargetInterval())
	fmt.Printf("MiningReward:       %d\n", gen.MiningReward)
	fmt.Printf("RequireSignatures:  %t\n", gen.RequireSignatures)
	fmt.Printf("EnforceBalances:    %t\n", gen.EnforceBalances)
	fmt.Printf("Accounts:           %d\n", len(gen.Balances))

	return nil
}

// Balances prints the starting balances from the genesis file.
func Balances(path string, onlyAct string) error {
	gen, err := genesis.Load(path)
	if err != nil {
		return err
	}

	for _, act := range gen.Accounts() {
		if onlyAct != "" && onlyAct != act {
			continue
		}
		fmt.Printf("Account: %s  Balance: %d\n", act, gen.Balances[act])
	}

	return nil
}
