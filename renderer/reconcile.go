package renderer

import (
	"fmt"
	"io"
	"strings"

	capgains "github.com/mjbr/capgains"
)

// ReconciliationMarkdown renders the result of a transfer reconciliation
// pass: the matched pairs, and the transfers left unmatched.
func ReconciliationMarkdown(transactions []capgains.Transaction, links []capgains.TransferLink) string {
	var b strings.Builder

	byID := make(map[string]capgains.Transaction, len(transactions))
	for _, tx := range transactions {
		byID[tx.ID] = tx
	}

	fmt.Fprint(&b, "# Transfer Reconciliation\n\n")
	fmt.Fprintf(&b, "%d matched pair(s)\n\n", len(links))

	if len(links) > 0 {
		fmt.Fprintln(&b, "| Asset | Sent | From | Received | To | Δ Quantity |")
		fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|")
		for _, link := range links {
			out, in := byID[link.OutID], byID[link.InID]
			fmt.Fprintf(&b, "| %s | %s %s | %s | %s %s | %s | %s |\n",
				out.Asset,
				out.Quantity, out.Timestamp.Format("2006-01-02 15:04"),
				out.Institution,
				in.Quantity, in.Timestamp.Format("2006-01-02 15:04"),
				in.Institution,
				out.Quantity.Sub(in.Quantity).Abs(),
			)
		}
		fmt.Fprintln(&b)
	}

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Unmatched Transfers\n\n")
		fmt.Fprintln(w, "| Time | Type | Asset | Quantity | Institution |")
		fmt.Fprintln(w, "|:---|:---|:---|---:|:---|")
		any := false
		for _, tx := range transactions {
			if tx.Type != capgains.TransferIn && tx.Type != capgains.TransferOut {
				continue
			}
			if tx.TransferID != "" {
				continue
			}
			any = true
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				tx.Timestamp.Format("2006-01-02 15:04"),
				tx.Type,
				tx.Asset,
				tx.Quantity,
				tx.Institution,
			)
		}
		fmt.Fprintln(w)
		return any
	})

	return b.String()
}
