package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	capgains "github.com/mjbr/capgains"
	"github.com/mjbr/capgains/pricedb"
)

// pricesCmd holds the flags for the 'prices' subcommand.
type pricesCmd struct {
	on string
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "show the content of the price database" }
func (*pricesCmd) Usage() string {
	return `cgt prices [-d <date>] [<asset>...]

  Without arguments, lists the assets stored in the price database with
  their covered date range. With assets and -d, shows the stored price of
  each asset on that day.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.on, "d", capgains.Today().String(), "Day to look up prices for")
}

func (c *pricesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := pricedb.Open(*priceDBFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening price database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	var b strings.Builder
	if f.NArg() == 0 {
		assets, err := db.Assets()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing assets: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprint(&b, "# Price Database\n\n")
		if len(assets) == 0 {
			fmt.Fprint(&b, "No prices stored. Use `cgt fetch` to download some.\n")
		} else {
			fmt.Fprintln(&b, "| Asset | From | To |")
			fmt.Fprintln(&b, "|:---|:---|:---|")
			for _, asset := range assets {
				from, to, ok := db.Range(asset)
				if !ok {
					continue
				}
				fmt.Fprintf(&b, "| %s | %s | %s |\n", asset, from, to)
			}
		}
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	}

	on, err := capgains.ParseDate(c.on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	fmt.Fprintf(&b, "# Prices on %s\n\n", on)
	fmt.Fprintln(&b, "| Asset | Price |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, asset := range f.Args() {
		if price, ok := db.Price(asset, on); ok {
			fmt.Fprintf(&b, "| %s | %s |\n", asset, price)
		} else {
			fmt.Fprintf(&b, "| %s | missing |\n", asset)
		}
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
