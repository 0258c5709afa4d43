package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	capgains "github.com/mjbr/capgains"
	"github.com/mjbr/capgains/pricedb"
)

// fetchCmd holds the flags for the 'fetch' subcommand.
type fetchCmd struct {
	from string
	to   string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch historical daily prices into the price database" }
func (*fetchCmd) Usage() string {
	return `cgt fetch [-s <date>] [-d <date>] <asset>...

  Fetches daily close prices from CoinGecko for the given assets and
  stores them in the local price database. Without a range, fetches the
  last 365 days.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "s", "", "Start date of the price range (default one year ago)")
	f.StringVar(&c.to, "d", capgains.Today().String(), "End date of the price range")
}

func (c *fetchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one asset is required")
		return subcommands.ExitUsageError
	}

	to, err := capgains.ParseDate(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}
	from := to.Add(-365)
	if c.from != "" {
		if from, err = capgains.ParseDate(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	db, err := pricedb.Open(*priceDBFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening price database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	apiKey := capgains.CoinGeckoAPIKey()
	for _, asset := range f.Args() {
		prices, err := capgains.FetchDailyPrices(apiKey, asset, from, to)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", asset, err)
			return subcommands.ExitFailure
		}
		if err := db.PutBatch(asset, prices); err != nil {
			fmt.Fprintf(os.Stderr, "Error storing %s: %v\n", asset, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Stored %d daily price(s) for %s\n", len(prices), asset)
	}
	return subcommands.ExitSuccess
}
