package capgains

import (
	"fmt"
	"time"
)

// TxType is a typed string identifying a normalized transaction type.
type TxType string

// Transaction types produced by the upstream normalization stage.
const (
	Buy           TxType = "buy"
	Sell          TxType = "sell"
	TransferIn    TxType = "transfer_in"
	TransferOut   TxType = "transfer_out"
	StakingReward TxType = "staking_reward"
	Dividend      TxType = "dividend"
	Interest      TxType = "interest"
	Deposit       TxType = "deposit"
	Withdrawal    TxType = "withdrawal"
	Swap          TxType = "swap"
	Fee           TxType = "fee"
)

// IsAcquiring reports whether the type creates an acquisition lot.
// Dividends here are in-kind: the normalization stage maps cash dividends
// to deposit.
func (t TxType) IsAcquiring() bool {
	switch t {
	case Buy, TransferIn, StakingReward, Interest, Dividend:
		return true
	}
	return false
}

// IsDisposing reports whether the type consumes acquisition lots.
func (t TxType) IsDisposing() bool {
	return t == Sell || t == TransferOut
}

// IsIncome reports whether the type is non-cash income, valued at market
// price on the day of receipt.
func (t TxType) IsIncome() bool {
	switch t {
	case StakingReward, Interest, Dividend:
		return true
	}
	return false
}

// Transaction is one normalized record of the input batch. It is the
// source of truth: after the reconciler annotates TransferID it is never
// mutated again. Quantity is an unsigned magnitude; the direction is
// implied by Type.
type Transaction struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        TxType    `json:"type"`
	Asset       string    `json:"asset"`
	Quantity    Quantity  `json:"quantity"`
	UnitPrice   Money     `json:"unit_price,omitempty"` // zero means not recorded
	Subtotal    Money     `json:"subtotal,omitempty"`   // gross amount before fees, when recorded
	Fees        Money     `json:"fees,omitempty"`
	Institution string    `json:"institution"`

	// CorrelationKey is an optional external key shared by both sides of a
	// transfer, typically a blockchain transaction hash.
	CorrelationKey string `json:"correlation_key,omitempty"`

	// TransferID is assigned by Reconcile when this record is one side of a
	// matched transfer pair.
	TransferID string `json:"transfer_id,omitempty"`

	// CostBasis is an optional pre-resolved total cost basis. When set on a
	// disposal it bypasses FIFO consumption entirely; when set on an
	// acquisition it overrides the resolver.
	CostBasis Money `json:"cost_basis,omitempty"`
}

// Date returns the day of the transaction.
func (tx Transaction) Date() Date { return DateOf(tx.Timestamp) }

// Validate enforces the input contract: asset, quantity and timestamp are
// required. The engine assumes validated input and fails fast on a
// violation instead of degrading.
func (tx Transaction) Validate() error {
	if tx.Asset == "" {
		return fmt.Errorf("transaction %q: missing asset", tx.ID)
	}
	if tx.Timestamp.IsZero() {
		return fmt.Errorf("transaction %q: missing timestamp", tx.ID)
	}
	if tx.Quantity.IsNegative() {
		return fmt.Errorf("transaction %q: quantity must be an unsigned magnitude, got %s", tx.ID, tx.Quantity)
	}
	if tx.Type.IsAcquiring() || tx.Type.IsDisposing() {
		if tx.Quantity.IsZero() {
			return fmt.Errorf("transaction %q: %s requires a positive quantity", tx.ID, tx.Type)
		}
	}
	if tx.Fees.IsNegative() {
		return fmt.Errorf("transaction %q: fees must not be negative, got %s", tx.ID, tx.Fees)
	}
	return nil
}

// GrossAmount returns the recorded subtotal when present, and falls back
// to quantity times recorded unit price.
func (tx Transaction) GrossAmount() Money {
	if !tx.Subtotal.IsZero() {
		return tx.Subtotal
	}
	return tx.UnitPrice.Mul(tx.Quantity)
}

// ByTimestamp orders transactions chronologically, breaking ties by ID so
// that processing order, and with it FIFO lot order, is deterministic.
func ByTimestamp(a, b Transaction) int {
	switch {
	case a.Timestamp.Before(b.Timestamp):
		return -1
	case a.Timestamp.After(b.Timestamp):
		return 1
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
