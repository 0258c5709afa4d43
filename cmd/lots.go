package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/mjbr/capgains/renderer"
)

// lotsCmd holds the flags for the 'lots' subcommand.
type lotsCmd struct {
	accurateFill string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "remaining acquisition lots per asset" }
func (*lotsCmd) Usage() string {
	return `cgt lots

  Replays the full transaction history and shows the acquisition lots
  still open for each asset, in first-in-first-out order.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.accurateFill, "accurate-fill", "", "Comma-separated institutions whose recorded unit prices are trusted for transfer cost inheritance")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, _, _, _, err := replay(c.accurateFill)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.OpenLotsMarkdown(ledger))
	return subcommands.ExitSuccess
}
