// This program performs administrative tasks for the ledger using a genesis
// file and an in memory chain.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

const usage = `usage: admin <command> [args]

  genesis [path]          validate and print the consensus parameters
  bals    [path] [acct]   print the starting balances
  mine    [path] [n]      mine n empty blocks in memory and report the retarget`

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	log.Infow("startup", "version", build)

	return processCommands(os.Args, log)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, log *zap.SugaredLogger) error {
	if len(args) < 2 {
		fmt.Println(usage)
		return errors.New("missing command")
	}

	path := "zblock/genesis.json"
	if len(args) > 2 {
		path = args[2]
	}

	switch args[1] {
	case "genesis":
		if err := commands.Genesis(path); err != nil {
			return fmt.Errorf("checking genesis: %w", err)
		}

	case "bals":
		var onlyAct string
		if len(args) > 3 {
			onlyAct = args[3]
		}
		if err := commands.Balances(path, onlyAct); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "mine":
		n := 5
		if len(args) > 3 {
			if _, err := fmt.Sscanf(args[3], "%d", &n); err != nil {
				return fmt.Errorf("parsing block count: %w", err)
			}
		}
		if err := commands.Mine(log, path, n); err != nil {
			return fmt.Errorf("mining: %w", err)
		}

	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
