package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the transactions file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `cgt fmt

  Validates and formats the transactions file. This command reads all
  transactions, validates them, sorts them by timestamp, and writes them
  back in a canonical JSONL format.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	transactions, err := readTransactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(transactions) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no transactions found to format.")
		return subcommands.ExitSuccess
	}

	if err := writeTransactions(transactions); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving formatted transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "✅ Successfully formatted %d transaction(s).\n", len(transactions))
	return subcommands.ExitSuccess
}
