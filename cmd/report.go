package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	capgains "github.com/mjbr/capgains"
	"github.com/mjbr/capgains/renderer"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	year               int
	threshold          int
	includeTransfers   bool
	excludeStablecoins bool
	accurateFill       string
	jsonOut            bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "annual capital gains report" }
func (*reportCmd) Usage() string {
	return `cgt report [-year <year>] [-threshold <days>] [-include-transfers] [-exclude-stablecoins] [-json]

  Reconciles transfers, replays the full transaction history through the
  acquisition lot ledger, and reports the disposals of the selected year
  with their short/long-term gain split.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", capgains.Today().Year(), "Tax year to report on")
	f.IntVar(&c.threshold, "threshold", 365, "Holding period, in days, at or below which a gain is short-term")
	f.BoolVar(&c.includeTransfers, "include-transfers", false, "Include transfer disposals in the taxable summary")
	f.BoolVar(&c.excludeStablecoins, "exclude-stablecoins", false, "Exclude stablecoin disposals from the taxable summary")
	f.StringVar(&c.accurateFill, "accurate-fill", "", "Comma-separated institutions whose recorded unit prices are trusted for transfer cost inheritance")
	f.BoolVar(&c.jsonOut, "json", false, "Emit the detail records as JSONL instead of markdown")
}

// replay runs the whole pipeline up to the realized records: load,
// reconcile with default tolerances, and process through the lot ledger.
func replay(accurateFill string) (*capgains.Ledger, []capgains.TaxLotRecord, []capgains.Transaction, []capgains.TransferLink, error) {
	transactions, err := readTransactions()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("could not load transactions: %w", err)
	}

	matched, links := capgains.Reconcile(transactions, capgains.ReconcileOptions{})

	oracle, closeOracle, err := openOracle()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	defer closeOracle()

	var opts capgains.ProcessOptions
	for _, inst := range strings.Split(accurateFill, ",") {
		if inst = strings.TrimSpace(inst); inst != "" {
			opts.AccurateFillInstitutions = append(opts.AccurateFillInstitutions, inst)
		}
	}

	ledger := capgains.NewLedger(oracle, capgains.NewLinkSet(links), opts)
	records, err := ledger.Process(matched)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("could not process transactions: %w", err)
	}
	return ledger, records, matched, links, nil
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, records, _, _, err := replay(c.accurateFill)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	report := capgains.GenerateReport(records, ledger.Quality(), capgains.ReportOptions{
		Year:                   c.year,
		ShortTermThresholdDays: c.threshold,
		IncludeTransfers:       c.includeTransfers,
		ExcludeStablecoins:     c.excludeStablecoins,
	})

	if c.jsonOut {
		if err := capgains.EncodeRecords(os.Stdout, report.Detail); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing records: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.TaxReportMarkdown(report))
	return subcommands.ExitSuccess
}
