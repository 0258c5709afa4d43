package capgains

// resolveAcquisitionCost computes the unit cost basis of an acquiring
// transaction. Rules, in priority order:
//
//  1. an explicit cost basis carried by the record wins,
//  2. non-cash income (staking, interest, in-kind dividend) is valued at
//     market price on the day of receipt,
//  3. a linked transfer_in inherits the sending side's disposal cost plus
//     any receiving fees,
//  4. an unlinked transfer_in is valued at market price plus fees,
//  5. a buy costs its recorded gross amount plus fees.
//
// Missing price data never fails the run: the cost degrades to zero and
// the lot is flagged for review. The zeroPriced return reports that flag.
func (l *Ledger) resolveAcquisitionCost(tx Transaction) (unit Money, zeroPriced bool) {
	if !tx.CostBasis.IsZero() {
		return tx.CostBasis.Div(tx.Quantity).ClampZero(), false
	}

	switch {
	case tx.Type.IsIncome():
		price, ok := l.oracle.Price(tx.Asset, tx.Date())
		if !ok {
			l.quality.MissingPrices++
			return Money{}, true
		}
		return price.ClampZero(), false

	case tx.Type == TransferIn:
		if link, ok := l.links.ByIn(tx.ID); ok {
			if out, ok := l.txByID[link.OutID]; ok {
				total := l.resolveDisposalCost(out).Add(tx.Fees)
				return total.Div(tx.Quantity).ClampZero(), false
			}
		}
		// No usable link: value the inherited position at market instead.
		price, ok := l.oracle.Price(tx.Asset, tx.Date())
		if !ok {
			l.quality.MissingPrices++
			return Money{}, true
		}
		unit := price.Mul(tx.Quantity).Add(tx.Fees).Div(tx.Quantity)
		return unit.ClampZero(), false

	default: // buy
		total := tx.GrossAmount().Add(tx.Fees)
		if total.IsZero() {
			return Money{}, true
		}
		return total.Div(tx.Quantity).ClampZero(), false
	}
}

// resolveDisposalCost returns the total cost basis realized by a
// transfer_out, for inheritance by its linked transfer_in. The result is
// memoized by transaction id for the whole run: when the main disposal
// pass has already consumed the lots for this transaction the realized
// total is reused, and when the query arrives out-of-band first, the
// queue is walked as a dry run so nothing is consumed twice.
func (l *Ledger) resolveDisposalCost(tx Transaction) Money {
	if !tx.CostBasis.IsZero() {
		return tx.CostBasis.ClampZero()
	}
	// Institutions known to post accurate fill prices are trusted over the
	// FIFO-derived figure, memoized or not.
	if l.accurateFill[tx.Institution] && !tx.UnitPrice.IsZero() {
		return tx.UnitPrice.Mul(tx.Quantity).ClampZero()
	}
	if cost, ok := l.memo[tx.ID]; ok {
		return cost
	}
	cost := l.queue(tx.Asset).costOf(tx.Quantity)
	l.memo[tx.ID] = cost
	return cost
}
