package capgains

import (
	"fmt"
	"maps"
	"slices"
)

// AcquisitionUnknown marks a tax lot record emitted for a shortfall: the
// disposal exceeded the available lot inventory and the excess carries a
// zero cost basis.
const AcquisitionUnknown TxType = "unknown"

// AcquisitionPreResolved marks a record emitted from an explicit cost
// basis override, bypassing FIFO consumption.
const AcquisitionPreResolved TxType = "pre-resolved"

// TaxLotRecord is one realized slice: a piece of one acquisition lot
// consumed by one disposal. A single disposal spanning several lots
// yields several records. Records are immutable once emitted.
type TaxLotRecord struct {
	Asset             string   `json:"asset"`
	Quantity          Quantity `json:"quantity"`
	AcquisitionDate   Date     `json:"acquisition_date"`
	DisposalDate      Date     `json:"disposal_date"`
	AcquisitionExch   string   `json:"acquisition_exchange"`
	DisposalExch      string   `json:"disposal_exchange"`
	Proceeds          Money    `json:"proceeds"` // net of the fee share below
	Fees              Money    `json:"fees"`
	CostBasis         Money    `json:"cost_basis"`
	GainLoss          Money    `json:"gain_loss"`
	HoldingPeriodDays int      `json:"holding_period_days"`
	DisposalTxID      string   `json:"disposal_transaction_id"`
	DisposalType      TxType   `json:"disposal_type"`
	AcquisitionType   TxType   `json:"acquisition_type"`

	// Shortfall marks the synthetic zero-basis remainder of a disposal that
	// exceeded available lots.
	Shortfall bool `json:"shortfall,omitempty"`
	// ZeroPriced marks records whose cost basis degraded to zero because no
	// price was available at acquisition.
	ZeroPriced bool `json:"zero_priced,omitempty"`
}

// DataQuality counts the recoverable degradations encountered during one
// processing run, so report consumers can judge reliability.
type DataQuality struct {
	Shortfalls         int `json:"shortfalls"`
	MissingPrices      int `json:"missing_prices"`
	ZeroPricedLots     int `json:"zero_priced_lots"`
	UnmatchedTransfers int `json:"unmatched_transfers"`
}

// ProcessOptions tunes a processing run.
type ProcessOptions struct {
	// AccurateFillInstitutions lists institutions whose recorded transfer
	// prices are trusted over FIFO-derived cost when resolving the sending
	// side of a transfer.
	AccurateFillInstitutions []string
}

// Ledger is the FIFO engine: per-asset queues of acquisition lots,
// consumed chronologically against disposals. It is single-use and
// single-threaded: create one, call Process once, then query the
// leftovers. Parallelism, if any, belongs outside: one Ledger per user.
type Ledger struct {
	oracle PriceOracle
	links  *LinkSet
	opts   ProcessOptions

	queues  map[string]*lotQueue
	txByID  map[string]Transaction
	memo    map[string]Money // disposal-side total cost by transaction id
	quality DataQuality

	accurateFill map[string]bool
}

// NewLedger creates a ledger resolving prices against the given oracle
// and transfer inheritance against the given links (may be nil when the
// input was never reconciled).
func NewLedger(oracle PriceOracle, links *LinkSet, opts ProcessOptions) *Ledger {
	if links == nil {
		links = NewLinkSet(nil)
	}
	accurate := make(map[string]bool, len(opts.AccurateFillInstitutions))
	for _, inst := range opts.AccurateFillInstitutions {
		accurate[inst] = true
	}
	return &Ledger{
		oracle:       oracle,
		links:        links,
		opts:         opts,
		queues:       make(map[string]*lotQueue),
		txByID:       make(map[string]Transaction),
		memo:         make(map[string]Money),
		accurateFill: accurate,
	}
}

// Process runs the batch: acquisitions push lots priced by the cost basis
// resolver, disposals consume lots oldest-first and emit one TaxLotRecord
// per consumed slice. The input is processed in non-decreasing timestamp
// order (ties broken by transaction id); cash movements (deposit,
// withdrawal, fee, swap legs already normalized away) are ignored.
//
// Process returns an error only on a violation of the input contract
// (missing asset, quantity or timestamp). Every data-driven degradation —
// missing price, lot shortfall, unmatched transfer — is resolved locally
// and surfaced through the records and the DataQuality counters.
func (l *Ledger) Process(transactions []Transaction) ([]TaxLotRecord, error) {
	batch := slices.Clone(transactions)
	slices.SortStableFunc(batch, ByTimestamp)

	for _, tx := range batch {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("invalid input batch: %w", err)
		}
		l.txByID[tx.ID] = tx
	}

	var records []TaxLotRecord
	for _, tx := range batch {
		switch {
		case tx.Type.IsAcquiring():
			l.acquire(tx)
		case tx.Type.IsDisposing():
			records = append(records, l.dispose(tx)...)
		}
	}
	return records, nil
}

// acquire pushes a new lot priced by the cost basis resolver.
func (l *Ledger) acquire(tx Transaction) {
	if tx.Type == TransferIn && tx.TransferID == "" {
		l.quality.UnmatchedTransfers++
	}
	unitCost, zeroPriced := l.resolveAcquisitionCost(tx)
	l.queue(tx.Asset).push(&AcquisitionLot{
		Asset:       tx.Asset,
		Acquired:    tx.Date(),
		Remaining:   tx.Quantity,
		UnitCost:    unitCost,
		OriginType:  tx.Type,
		Institution: tx.Institution,
		ZeroPriced:  zeroPriced,
		txID:        tx.ID,
	})
	if zeroPriced {
		l.quality.ZeroPricedLots++
	}
}

// dispose consumes lots against the disposal and emits the realized
// records. An explicit cost basis override bypasses the queue entirely.
func (l *Ledger) dispose(tx Transaction) []TaxLotRecord {
	if tx.Type == TransferOut && tx.TransferID == "" {
		l.quality.UnmatchedTransfers++
	}

	gross := l.disposalGross(tx)

	if !tx.CostBasis.IsZero() {
		// The caller already knows the correct basis (e.g. a previously
		// resolved matched transfer). Emit exactly one record and leave the
		// lot queue alone.
		l.memo[tx.ID] = tx.CostBasis
		proceeds := gross.Sub(tx.Fees)
		return []TaxLotRecord{{
			Asset:           tx.Asset,
			Quantity:        tx.Quantity,
			AcquisitionDate: tx.Date(),
			DisposalDate:    tx.Date(),
			DisposalExch:    tx.Institution,
			Proceeds:        proceeds,
			Fees:            tx.Fees,
			CostBasis:       tx.CostBasis,
			GainLoss:        proceeds.Sub(tx.CostBasis),
			DisposalTxID:    tx.ID,
			DisposalType:    tx.Type,
			AcquisitionType: AcquisitionPreResolved,
		}}
	}

	consumed := l.queue(tx.Asset).consume(tx.Quantity)

	var records []TaxLotRecord
	var total Money
	disposed := Q(0)
	for _, s := range consumed {
		fraction := s.quantity.Div(tx.Quantity)
		sliceGross := gross.Mul(fraction)
		sliceFees := tx.Fees.Mul(fraction)
		proceeds := sliceGross.Sub(sliceFees)
		costBasis := s.lot.UnitCost.Mul(s.quantity)
		total = total.Add(costBasis)
		disposed = disposed.Add(s.quantity)
		records = append(records, TaxLotRecord{
			Asset:             tx.Asset,
			Quantity:          s.quantity,
			AcquisitionDate:   s.lot.Acquired,
			DisposalDate:      tx.Date(),
			AcquisitionExch:   s.lot.Institution,
			DisposalExch:      tx.Institution,
			Proceeds:          proceeds,
			Fees:              sliceFees,
			CostBasis:         costBasis,
			GainLoss:          proceeds.Sub(costBasis),
			HoldingPeriodDays: tx.Date().Sub(s.lot.Acquired),
			DisposalTxID:      tx.ID,
			DisposalType:      tx.Type,
			AcquisitionType:   s.lot.OriginType,
			ZeroPriced:        s.lot.ZeroPriced,
		})
	}

	if shortfall := tx.Quantity.Sub(disposed); shortfall.IsPositive() {
		// Recoverable degraded case: the disposal exceeds the recorded
		// inventory. The excess realizes with a zero basis so the report
		// stays complete, and the record stays distinguishable for audit.
		l.quality.Shortfalls++
		fraction := shortfall.Div(tx.Quantity)
		sliceGross := gross.Mul(fraction)
		sliceFees := tx.Fees.Mul(fraction)
		proceeds := sliceGross.Sub(sliceFees)
		records = append(records, TaxLotRecord{
			Asset:           tx.Asset,
			Quantity:        shortfall,
			AcquisitionDate: tx.Date(),
			DisposalDate:    tx.Date(),
			DisposalExch:    tx.Institution,
			Proceeds:        proceeds,
			Fees:            sliceFees,
			GainLoss:        proceeds,
			DisposalTxID:    tx.ID,
			DisposalType:    tx.Type,
			AcquisitionType: AcquisitionUnknown,
			Shortfall:       true,
		})
	}

	// Keep the realized total for a later linked transfer_in resolution,
	// so inheritance never re-walks (and never double-consumes) the queue.
	l.memo[tx.ID] = total
	return records
}

// disposalGross returns the gross disposal amount before fees.
func (l *Ledger) disposalGross(tx Transaction) Money {
	if gross := tx.GrossAmount(); !gross.IsZero() {
		return gross
	}
	// Transfers rarely carry a recorded amount; value them at market so
	// the audit trail shows a meaningful proceeds column.
	if price, ok := l.oracle.Price(tx.Asset, tx.Date()); ok {
		return price.Mul(tx.Quantity)
	}
	return Money{}
}

// OpenLots returns the remaining open lots of an asset, oldest first.
func (l *Ledger) OpenLots(asset string) []AcquisitionLot {
	return l.queue(asset).snapshot()
}

// OpenQuantity returns the total open quantity of an asset.
func (l *Ledger) OpenQuantity(asset string) Quantity {
	return l.queue(asset).open()
}

// Assets returns the assets with at least one lot ever pushed, sorted.
func (l *Ledger) Assets() []string {
	return slices.Sorted(maps.Keys(l.queues))
}

// Quality returns the data-quality counters of the run.
func (l *Ledger) Quality() DataQuality { return l.quality }

func (l *Ledger) queue(asset string) *lotQueue {
	q, ok := l.queues[asset]
	if !ok {
		q = &lotQueue{}
		l.queues[asset] = q
	}
	return q
}
