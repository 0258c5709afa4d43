// Package renderer turns reports into markdown for terminal display.
package renderer

import (
	"fmt"
	"io"
	"strings"

	capgains "github.com/mjbr/capgains"
)

// TaxReportMarkdown renders the annual tax report to a markdown string.
func TaxReportMarkdown(report *capgains.TaxReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tax Report %d\n\n", report.Year)

	s := report.Summary
	fmt.Fprint(&b, "## Summary\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Net Proceeds | %s |\n", s.NetProceeds)
	fmt.Fprintf(&b, "| Total Cost Basis | %s |\n", s.TotalCostBasis)
	fmt.Fprintf(&b, "| Short-Term Gain/Loss | %s |\n", s.ShortTermGainLoss.SignedString())
	fmt.Fprintf(&b, "| Long-Term Gain/Loss | %s |\n", s.LongTermGainLoss.SignedString())
	fmt.Fprintf(&b, "| **Total Gain/Loss** | **%s** |\n", s.TotalGainLoss.SignedString())
	fmt.Fprintf(&b, "\nTaxable disposals: %d\n\n", s.TotalTransactions)
	if s.Rescaled {
		fmt.Fprint(&b, "> ⚠️ the short/long-term split was inconsistent and has been rescaled.\n\n")
	}

	if len(report.Detail) > 0 {
		fmt.Fprint(&b, "## Disposals\n\n")
		fmt.Fprintln(&b, "| Disposed | Asset | Quantity | Acquired | Proceeds | Cost Basis | Gain/Loss | Term | Flags |")
		fmt.Fprintln(&b, "|:---|:---|---:|:---|---:|---:|---:|:---|:---|")
		for _, r := range report.Detail {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				r.DisposalDate,
				r.Asset,
				r.Quantity,
				r.AcquisitionDate,
				r.Proceeds,
				r.CostBasis,
				r.GainLoss.SignedString(),
				report.TermOf(r),
				recordFlags(r),
			)
		}
		fmt.Fprintln(&b)
	}

	DataQualityMarkdown(&b, report.Quality)
	return b.String()
}

func recordFlags(r capgains.TaxLotRecord) string {
	var flags []string
	if r.Shortfall {
		flags = append(flags, "shortfall")
	}
	if r.ZeroPriced {
		flags = append(flags, "zero-priced")
	}
	if r.DisposalType == capgains.TransferOut {
		flags = append(flags, "transfer")
	}
	return strings.Join(flags, ", ")
}

// DataQualityMarkdown writes a data quality section, but only when at
// least one counter is non-zero.
func DataQualityMarkdown(w io.Writer, q capgains.DataQuality) {
	ConditionalBlock(w, func(w io.Writer) bool {
		fmt.Fprint(w, "## Data Quality\n\n")
		fmt.Fprintln(w, "| Issue | Count |")
		fmt.Fprintln(w, "|:---|---:|")
		any := false
		for _, row := range []struct {
			label string
			count int
		}{
			{"Disposals exceeding acquired quantity", q.Shortfalls},
			{"Missing oracle prices", q.MissingPrices},
			{"Zero-priced acquisition lots", q.ZeroPricedLots},
			{"Unmatched transfers", q.UnmatchedTransfers},
		} {
			if row.count == 0 {
				continue
			}
			any = true
			fmt.Fprintf(w, "| %s | %d |\n", row.label, row.count)
		}
		fmt.Fprintln(w)
		return any
	})
}
