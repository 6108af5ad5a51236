// Package cmd contains the wallet app.
package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardanlabs/powledger/foundation/client"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	url         string
	timeout     time.Duration
)

const keyExtension = ".ecdsa"

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Name of the private key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Time allowed for a call to the node.")
}

var rootCmd = &cobra.Command{
	Use:          "wallet",
	Short:        "Simple wallet for the proof of work ledger",
	SilenceUsage: true,
}

// Execute runs the wallet command selected on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	name := accountName
	if !strings.HasSuffix(name, keyExtension) {
		name += keyExtension
	}

	return filepath.Join(accountPath, name)
}

func newClient() *client.Client {
	return client.New(url, client.WithTimeout(timeout))
}
