// Package cmd implements the CLI application to reconcile transfers and
// compute capital gains.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/google/subcommands"
	capgains "github.com/mjbr/capgains"
	"github.com/mjbr/capgains/pricedb"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reconcileCmd{}, "ledger")
	c.Register(&fmtCmd{}, "ledger")

	c.Register(&reportCmd{}, "reports")
	c.Register(&lotsCmd{}, "reports")
	c.Register(&explainCmd{}, "reports")

	c.Register(&fetchCmd{}, "prices")
	c.Register(&pricesCmd{}, "prices")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "transactions.jsonl", "Path to the transactions file (JSONL format)")
var priceDBFile = flag.String("price-db", "prices.db", "Path to the local daily price database")

// readTransactions loads the app default transactions file.
func readTransactions() ([]capgains.Transaction, error) {
	f, err := os.Open(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("warning, transactions file does not exist, starting from an empty ledger instead")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return capgains.DecodeTransactions(f)
}

// writeTransactions replaces the app default transactions file.
func writeTransactions(transactions []capgains.Transaction) error {
	f, err := os.Create(*ledgerFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return capgains.EncodeTransactions(f, transactions)
}

// openOracle assembles the price oracle chain: stablecoins answer first,
// then the local price database when it exists. The returned close
// function is always safe to call.
func openOracle() (capgains.PriceOracle, func(), error) {
	chain := capgains.ChainOracle{capgains.StablecoinOracle{}}
	closer := func() {}

	if _, err := os.Stat(*priceDBFile); err == nil {
		db, err := pricedb.Open(*priceDBFile)
		if err != nil {
			return nil, closer, fmt.Errorf("cannot open price database %q: %w", *priceDBFile, err)
		}
		chain = append(chain, db)
		closer = func() { db.Close() }
	}
	return chain, closer, nil
}
