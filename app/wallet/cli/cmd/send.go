package cmd

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	to       string
	amount   int64
	data     string
	unsigned bool
	nonce    uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a transaction",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account receiving the value.")
	sendCmd.Flags().Int64VarP(&amount, "amount", "v", 0, "Value to send.")
	sendCmd.Flags().StringVarP(&data, "data", "d", "", "Data to attach to the transaction.")
	sendCmd.Flags().BoolVar(&unsigned, "unsigned", false, "Send the transaction without a signature.")
	sendCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Nonce to sign with, 0 asks the node for the next one.")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) error {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return err
	}

	from := database.PublicKeyToAccountID(privateKey.PublicKey)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client := newClient()

	if nonce == 0 && !unsigned {
		if nonce, err = client.NextNonce(ctx, from); err != nil {
			return fmt.Errorf("looking up nonce: %w", err)
		}
	}

	tx, err := database.NewTx(nonce, from, database.AccountID(to), amount, data)
	if err != nil {
		return err
	}

	if !unsigned {
		if tx, err = tx.Sign(privateKey); err != nil {
			return err
		}
	}

	resp, err := client.SubmitTransaction(ctx, tx)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", resp.Status, resp.Hash)
	return nil
}
