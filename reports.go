package capgains

import (
	"slices"
)

// summaryEpsilon is the tolerance, in currency units, for the
// short + long == total consistency check of a report summary.
var summaryEpsilon = M(0.01)

// ReportOptions configures the annual tax report.
type ReportOptions struct {
	// Year selects disposals by their disposal date.
	Year int

	// ShortTermThresholdDays is the holding period, in days, at or below
	// which a gain is short-term. Defaults to 365.
	ShortTermThresholdDays int

	// IncludeTransfers adds transfer-derived disposals to the taxable
	// summary. Transfers alone are not taxable events in most
	// jurisdictions, so the default excludes them; detail rows always keep
	// them for audit.
	IncludeTransfers bool

	// ExcludeStablecoins drops USD-stablecoin disposals from the taxable
	// summary; their gain is rounding noise by construction.
	ExcludeStablecoins bool
}

func (o ReportOptions) withDefaults() ReportOptions {
	if o.ShortTermThresholdDays == 0 {
		o.ShortTermThresholdDays = 365
	}
	return o
}

// Term classifies a holding period.
type Term string

const (
	ShortTerm Term = "short"
	LongTerm  Term = "long"
)

// TermOf classifies a record against the threshold.
func (o ReportOptions) TermOf(r TaxLotRecord) Term {
	if r.HoldingPeriodDays <= o.ShortTermThresholdDays {
		return ShortTerm
	}
	return LongTerm
}

// Summary aggregates the taxable records of one year.
type Summary struct {
	NetProceeds       Money `json:"net_proceeds"`
	TotalCostBasis    Money `json:"total_cost_basis"`
	TotalGainLoss     Money `json:"total_gain_loss"`
	ShortTermGainLoss Money `json:"short_term_gain_loss"`
	LongTermGainLoss  Money `json:"long_term_gain_loss"`
	TotalTransactions int   `json:"total_transactions"`

	// Rescaled reports that the short/long split failed the consistency
	// check and both terms were proportionally corrected to sum to the
	// total. A degraded-mode annotation, not an error.
	Rescaled bool `json:"rescaled,omitempty"`
}

// TaxReport is the annual output: the detail rows (every realized slice
// of the year, transfers included), the taxable summary, and the
// data-quality counters of the run that produced the records.
type TaxReport struct {
	Year      int            `json:"year"`
	Threshold int            `json:"short_term_threshold_days"`
	Detail    []TaxLotRecord `json:"detail"`
	Summary   Summary        `json:"summary"`
	Quality   DataQuality    `json:"quality"`
}

// TermOf classifies a detail record against the report's threshold.
func (t *TaxReport) TermOf(r TaxLotRecord) Term {
	return ReportOptions{ShortTermThresholdDays: t.Threshold}.TermOf(r)
}

// GenerateReport rolls the realized records of one year into detail rows
// and a taxable summary.
func GenerateReport(records []TaxLotRecord, quality DataQuality, opts ReportOptions) *TaxReport {
	opts = opts.withDefaults()

	report := &TaxReport{Year: opts.Year, Threshold: opts.ShortTermThresholdDays, Quality: quality}
	for _, r := range records {
		if r.DisposalDate.Year() != opts.Year {
			continue
		}
		report.Detail = append(report.Detail, r)
	}
	slices.SortStableFunc(report.Detail, func(a, b TaxLotRecord) int {
		switch {
		case a.DisposalDate.Before(b.DisposalDate):
			return -1
		case a.DisposalDate.After(b.DisposalDate):
			return 1
		default:
			return 0
		}
	})

	s := &report.Summary
	for _, r := range report.Detail {
		if !opts.IncludeTransfers && r.DisposalType == TransferOut {
			continue
		}
		if opts.ExcludeStablecoins && Stablecoins[r.Asset] {
			continue
		}
		s.NetProceeds = s.NetProceeds.Add(r.Proceeds)
		s.TotalCostBasis = s.TotalCostBasis.Add(r.CostBasis)
		s.TotalGainLoss = s.TotalGainLoss.Add(r.GainLoss)
		if opts.TermOf(r) == ShortTerm {
			s.ShortTermGainLoss = s.ShortTermGainLoss.Add(r.GainLoss)
		} else {
			s.LongTermGainLoss = s.LongTermGainLoss.Add(r.GainLoss)
		}
		s.TotalTransactions++
	}

	// The split must account for the whole total. Decimal arithmetic keeps
	// this exact, but a violation (e.g. records aggregated from mixed
	// runs) is corrected by rescaling both terms rather than crashing.
	split := s.ShortTermGainLoss.Add(s.LongTermGainLoss)
	if diff := split.Sub(s.TotalGainLoss).Abs(); diff.GreaterThan(summaryEpsilon) && !split.IsZero() {
		factor := s.TotalGainLoss.DivMoney(split)
		s.ShortTermGainLoss = s.ShortTermGainLoss.MulScalar(factor)
		s.LongTermGainLoss = s.LongTermGainLoss.MulScalar(factor)
		s.Rescaled = true
	}

	return report
}
