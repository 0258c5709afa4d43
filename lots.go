package capgains

import "slices"

// AcquisitionLot is a quantity of an asset acquired on a specific date at
// a specific unit cost. Lots are engine-internal and mutable: Remaining
// decreases as disposals consume the lot, and the lot leaves its queue
// when Remaining reaches zero.
type AcquisitionLot struct {
	Asset       string   `json:"asset"`
	Acquired    Date     `json:"acquisition_date"`
	Remaining   Quantity `json:"remaining_quantity"`
	UnitCost    Money    `json:"unit_cost_basis"`
	OriginType  TxType   `json:"origin_type"`
	Institution string   `json:"origin_institution"`

	// ZeroPriced marks a lot whose cost basis degraded to zero because no
	// price was available; it is carried onto every record consuming the lot.
	ZeroPriced bool `json:"zero_priced,omitempty"`

	txID string // acquiring transaction, for deterministic ordering and audit
}

// lotQueue is the open-lot inventory of one asset, oldest acquisition
// first. Transactions are processed in chronological order, so appending
// preserves the FIFO invariant: the ordering by acquisition date with
// ties broken by transaction id is exactly the push order.
type lotQueue struct {
	lots []*AcquisitionLot
}

func (q *lotQueue) push(l *AcquisitionLot) { q.lots = append(q.lots, l) }

// lotSlice is one piece of a disposal carved out of a single lot.
type lotSlice struct {
	lot      *AcquisitionLot
	quantity Quantity
}

// consume removes quantity from the head of the queue, oldest lot first,
// and returns the consumed slices. The returned quantity in each slice is
// positive; the sum may fall short of the requested quantity when the
// queue runs dry, which the caller materializes as a shortfall.
func (q *lotQueue) consume(quantity Quantity) []lotSlice {
	var consumed []lotSlice
	remaining := quantity
	for len(q.lots) > 0 && remaining.IsPositive() {
		head := q.lots[0]
		take := remaining.Min(head.Remaining)
		consumed = append(consumed, lotSlice{lot: head, quantity: take})
		head.Remaining = head.Remaining.Sub(take)
		remaining = remaining.Sub(take)
		if head.Remaining.IsZero() {
			q.lots = q.lots[1:]
		}
	}
	return consumed
}

// costOf walks the queue as a dry run and returns the aggregate cost of
// disposing the given quantity, without mutating any lot. It mirrors
// consume exactly so an out-of-band cost query agrees with what the main
// pass will later consume.
func (q *lotQueue) costOf(quantity Quantity) Money {
	var cost Money
	remaining := quantity
	for _, l := range q.lots {
		if !remaining.IsPositive() {
			break
		}
		take := remaining.Min(l.Remaining)
		cost = cost.Add(l.UnitCost.Mul(take))
		remaining = remaining.Sub(take)
	}
	return cost
}

// open returns the remaining open quantity in the queue.
func (q *lotQueue) open() Quantity {
	total := Q(0)
	for _, l := range q.lots {
		total = total.Add(l.Remaining)
	}
	return total
}

// snapshot returns copies of the open lots, oldest first.
func (q *lotQueue) snapshot() []AcquisitionLot {
	out := make([]AcquisitionLot, 0, len(q.lots))
	for _, l := range q.lots {
		out = append(out, *l)
	}
	return slices.Clip(out)
}
