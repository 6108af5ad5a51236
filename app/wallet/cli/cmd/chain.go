package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var chainAccount string

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the blocks in the chain.",
	RunE:  chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.Flags().StringVar(&chainAccount, "for", "", "Only show blocks for this account.")
}

func chainRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	blocks, err := newClient().Blocks(ctx, database.AccountID(chainAccount))
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		pterm.Info.Println("no blocks found")
		return nil
	}

	td := pterm.TableData{
		{"Number", "Mined", "Difficulty", "Nonce", "Hash", "Trans"},
	}
	for _, blk := range blocks {
		td = append(td, []string{
			strconv.FormatUint(blk.Number, 10),
			time.UnixMilli(int64(blk.TimeStamp)).UTC().Format(time.RFC3339),
			strconv.FormatUint(uint64(blk.Difficulty), 10),
			strconv.FormatUint(blk.Nonce, 10),
			blk.Hash,
			strconv.Itoa(len(blk.Transactions)),
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(td).Render(); err != nil {
		return err
	}

	latest := blocks[len(blocks)-1]
	pterm.Println()
	pterm.DefaultSection.Println(fmt.Sprintf("block %d transactions", latest.Number))
	for _, tx := range latest.Transactions {
		pterm.Printfln("%s -> %s : %d", pterm.LightCyan(tx.FromName), pterm.LightCyan(tx.ToName), tx.Amount)
	}

	return nil
}
