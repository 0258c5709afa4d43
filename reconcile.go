package capgains

import (
	"log"
	"slices"
	"time"

	"github.com/google/uuid"
)

// TransferLink records one matched transfer pair. Links are created once
// and never updated; no two links share an out- or in-transaction.
type TransferLink struct {
	TransferID string `json:"transfer_id"`
	OutID      string `json:"out_transaction_id"`
	InID       string `json:"in_transaction_id"`
}

// LinkSet indexes transfer links by both ends.
type LinkSet struct {
	byOut map[string]TransferLink
	byIn  map[string]TransferLink
	byID  map[string]TransferLink
}

// NewLinkSet builds a LinkSet from a list of links.
func NewLinkSet(links []TransferLink) *LinkSet {
	s := &LinkSet{
		byOut: make(map[string]TransferLink),
		byIn:  make(map[string]TransferLink),
		byID:  make(map[string]TransferLink),
	}
	for _, l := range links {
		s.byOut[l.OutID] = l
		s.byIn[l.InID] = l
		s.byID[l.TransferID] = l
	}
	return s
}

// ByOut returns the link whose sending side is the given transaction id.
func (s *LinkSet) ByOut(txID string) (TransferLink, bool) {
	l, ok := s.byOut[txID]
	return l, ok
}

// ByIn returns the link whose receiving side is the given transaction id.
func (s *LinkSet) ByIn(txID string) (TransferLink, bool) {
	l, ok := s.byIn[txID]
	return l, ok
}

// Len returns the number of links in the set.
func (s *LinkSet) Len() int { return len(s.byID) }

// ReconcileOptions tunes the fuzzy matching pass.
type ReconcileOptions struct {
	// QuantityTolerance is the maximum difference between out and in
	// quantities for a fuzzy match. Defaults to 0.001 units.
	QuantityTolerance Quantity
	// TimeTolerance is the maximum distance between out and in timestamps
	// for a fuzzy match. Defaults to one hour.
	TimeTolerance time.Duration
}

func (o ReconcileOptions) withDefaults() ReconcileOptions {
	if o.QuantityTolerance.IsZero() {
		o.QuantityTolerance = Q(0.001)
	}
	if o.TimeTolerance == 0 {
		o.TimeTolerance = time.Hour
	}
	return o
}

// Reconcile pairs transfer_out and transfer_in records that represent the
// same physical movement of an asset between institutions. It returns a
// copy of the input with TransferID annotated on both sides of each pair,
// plus the resulting links.
//
// Matching runs in two passes: an exact pass on the external correlation
// key (e.g. a chain transaction hash), then a fuzzy pass on asset,
// quantity and timestamp proximity. Records that are already linked are
// left untouched, which makes the function idempotent. Unmatched
// transfers are a legitimate terminal state, not an error: they are later
// valued independently through the price oracle.
func Reconcile(transactions []Transaction, opts ReconcileOptions) ([]Transaction, []TransferLink) {
	opts = opts.withDefaults()
	out := slices.Clone(transactions)

	// Partition indexes of unmatched transfer sides. Pre-existing links
	// are collected as-is and their sides excluded from matching.
	var outs, ins []int
	prior := map[string]*TransferLink{} // transfer_id -> partial link
	for i, tx := range out {
		switch {
		case tx.Type != TransferOut && tx.Type != TransferIn:
			continue
		case tx.TransferID != "":
			l := prior[tx.TransferID]
			if l == nil {
				l = &TransferLink{TransferID: tx.TransferID}
				prior[tx.TransferID] = l
			}
			if tx.Type == TransferOut {
				l.OutID = tx.ID
			} else {
				l.InID = tx.ID
			}
		case tx.Type == TransferOut:
			outs = append(outs, i)
		default:
			ins = append(ins, i)
		}
	}

	var links []TransferLink
	for _, l := range prior {
		links = append(links, *l)
	}

	link := func(o, i int) {
		id := uuid.NewString()
		out[o].TransferID = id
		out[i].TransferID = id
		links = append(links, TransferLink{TransferID: id, OutID: out[o].ID, InID: out[i].ID})
	}

	// Deterministic matching order regardless of input order.
	byTime := func(a, b int) int { return ByTimestamp(out[a], out[b]) }
	slices.SortFunc(outs, byTime)
	slices.SortFunc(ins, byTime)

	// Exact pass: group receiving sides by correlation key.
	inByKey := map[string][]int{}
	for _, i := range ins {
		if key := out[i].CorrelationKey; key != "" {
			inByKey[key] = append(inByKey[key], i)
		}
	}
	matched := map[int]bool{}
	outs = slices.DeleteFunc(outs, func(o int) bool {
		key := out[o].CorrelationKey
		if key == "" {
			return false
		}
		candidates := inByKey[key]
		if len(candidates) == 0 {
			return false
		}
		i := candidates[0]
		inByKey[key] = candidates[1:]
		matched[i] = true
		link(o, i)
		return true
	})
	ins = slices.DeleteFunc(ins, func(i int) bool { return matched[i] })

	// Fuzzy pass: same asset, quantity and time within tolerance. The
	// closest candidate in time wins; remaining ties go to the smallest
	// quantity delta, then to the lowest transaction id, so that an
	// ambiguous match resolves the same way on every run.
	for _, o := range outs {
		best := -1
		var bestDt time.Duration
		var bestDq Quantity
		for _, i := range ins {
			in := out[i]
			if in.Asset != out[o].Asset {
				continue
			}
			if !in.Quantity.Within(out[o].Quantity, opts.QuantityTolerance) {
				continue
			}
			dt := in.Timestamp.Sub(out[o].Timestamp)
			if dt < 0 {
				dt = -dt
			}
			if dt > opts.TimeTolerance {
				continue
			}
			dq := in.Quantity.Sub(out[o].Quantity).Abs()
			switch {
			case best < 0, dt < bestDt:
			case dt == bestDt && dq.LessThan(bestDq):
				log.Printf("ambiguous transfer match for %s: preferring %s over %s by quantity delta", out[o].ID, in.ID, out[best].ID)
			case dt == bestDt && dq.Equal(bestDq) && in.ID < out[best].ID:
				log.Printf("ambiguous transfer match for %s: preferring %s over %s by id", out[o].ID, in.ID, out[best].ID)
			default:
				continue
			}
			best, bestDt, bestDq = i, dt, dq
		}
		if best < 0 {
			continue
		}
		link(o, best)
		ins = slices.DeleteFunc(ins, func(i int) bool { return i == best })
	}

	slices.SortFunc(links, func(a, b TransferLink) int {
		switch {
		case a.OutID < b.OutID:
			return -1
		case a.OutID > b.OutID:
			return 1
		default:
			return 0
		}
	})
	return out, links
}
