package capgains

import (
	"slices"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{ID: "t1", Timestamp: at(2025, time.January, 1, 10), Type: Buy, Asset: "BTC", Quantity: Q(1)}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"missing asset", func(tx *Transaction) { tx.Asset = "" }},
		{"missing timestamp", func(tx *Transaction) { tx.Timestamp = time.Time{} }},
		{"negative quantity", func(tx *Transaction) { tx.Quantity = Q(-1) }},
		{"zero quantity on buy", func(tx *Transaction) { tx.Quantity = Q(0) }},
		{"negative fees", func(tx *Transaction) { tx.Fees = M(-1) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tx := valid
			c.mutate(&tx)
			if err := tx.Validate(); err == nil {
				t.Error("Validate() accepted an invalid transaction")
			}
		})
	}

	// zero quantity is fine on a cash movement
	deposit := Transaction{ID: "d1", Timestamp: at(2025, time.January, 1, 10), Type: Deposit, Asset: "USD"}
	if err := deposit.Validate(); err != nil {
		t.Errorf("zero-quantity deposit rejected: %v", err)
	}
}

func TestTransactionGrossAmount(t *testing.T) {
	tx := Transaction{Quantity: Q(2), UnitPrice: M(100), Subtotal: M(150)}
	if got := tx.GrossAmount(); !got.Equal(M(150)) {
		t.Errorf("GrossAmount() = %s, want the recorded $150 subtotal", got)
	}
	tx.Subtotal = Money{}
	if got := tx.GrossAmount(); !got.Equal(M(200)) {
		t.Errorf("GrossAmount() = %s, want 2 x $100", got)
	}
}

func TestByTimestamp_TiesBrokenByID(t *testing.T) {
	same := at(2025, time.January, 1, 10)
	txs := []Transaction{
		{ID: "b", Timestamp: same},
		{ID: "a", Timestamp: same},
		{ID: "c", Timestamp: same.Add(-time.Hour)},
	}
	slices.SortFunc(txs, ByTimestamp)
	if txs[0].ID != "c" || txs[1].ID != "a" || txs[2].ID != "b" {
		t.Errorf("order = %s,%s,%s; want c,a,b", txs[0].ID, txs[1].ID, txs[2].ID)
	}
}
