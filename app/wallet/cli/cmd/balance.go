package cmd

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return err
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
	fmt.Println("For Account:", accountID)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	acts, err := newClient().Accounts(ctx, accountID)
	if err != nil {
		return err
	}

	if len(acts.Accounts) > 0 {
		fmt.Println(acts.Accounts[0].Balance)
	}

	return nil
}
