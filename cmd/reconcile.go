package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	capgains "github.com/mjbr/capgains"
	"github.com/mjbr/capgains/renderer"
)

// reconcileCmd holds the flags for the 'reconcile' subcommand.
type reconcileCmd struct {
	qtyTolerance  string
	timeTolerance time.Duration
	write         bool
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "pair transfer withdrawals with their deposits" }
func (*reconcileCmd) Usage() string {
	return `cgt reconcile [-qty-tolerance <quantity>] [-time-tolerance <duration>] [-w]

  Pairs transfer_out transactions with their matching transfer_in across
  institutions, first by shared correlation key, then by quantity and
  time proximity. Matched pairs receive a shared transfer id.

  With -w the updated transactions are written back to the ledger file.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.qtyTolerance, "qty-tolerance", "0.001", "Maximum quantity difference for a fuzzy match")
	f.DurationVar(&c.timeTolerance, "time-tolerance", time.Hour, "Maximum time difference for a fuzzy match")
	f.BoolVar(&c.write, "w", false, "Write matched transfer ids back to the ledger file")
}

func (c *reconcileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tolerance, err := capgains.ParseQuantity(c.qtyTolerance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing quantity tolerance: %v\n", err)
		return subcommands.ExitUsageError
	}

	transactions, err := readTransactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions: %v\n", err)
		return subcommands.ExitFailure
	}

	matched, links := capgains.Reconcile(transactions, capgains.ReconcileOptions{
		QuantityTolerance: tolerance,
		TimeTolerance:     c.timeTolerance,
	})

	printMarkdown(renderer.ReconciliationMarkdown(matched, links))

	if c.write {
		if err := writeTransactions(matched); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing transactions: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Wrote %d transaction(s) to %s\n", len(matched), *ledgerFile)
	}
	return subcommands.ExitSuccess
}
