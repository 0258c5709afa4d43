package renderer

import (
	"fmt"
	"strings"

	capgains "github.com/mjbr/capgains"
)

// OpenLotsMarkdown renders the remaining acquisition lots of a ledger,
// grouped by asset in first-in-first-out order.
func OpenLotsMarkdown(ledger *capgains.Ledger) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Open Lots\n\n")

	assets := ledger.Assets()
	if len(assets) == 0 {
		fmt.Fprint(&b, "No open lots.\n")
		return b.String()
	}

	for _, asset := range assets {
		lots := ledger.OpenLots(asset)
		if len(lots) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s (%s open)\n\n", asset, ledger.OpenQuantity(asset))
		fmt.Fprintln(&b, "| Acquired | Remaining | Unit Cost | Origin | Institution | Flags |")
		fmt.Fprintln(&b, "|:---|---:|---:|:---|:---|:---|")
		for _, lot := range lots {
			flags := ""
			if lot.ZeroPriced {
				flags = "zero-priced"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				lot.Acquired,
				lot.Remaining,
				lot.UnitCost,
				lot.OriginType,
				lot.Institution,
				flags,
			)
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
