package capgains

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestEncodeDecodeTransactions(t *testing.T) {
	transactions := []Transaction{
		{ID: "t2", Timestamp: at(2024, time.February, 1, 10), Type: Sell, Asset: "BTC", Quantity: Q(0.5), Subtotal: M(20000), Fees: M(10), Institution: "kraken"},
		{ID: "t1", Timestamp: at(2024, time.January, 1, 10), Type: Buy, Asset: "BTC", Quantity: Q(1), UnitPrice: M(30000), Institution: "coinbase", CorrelationKey: "0xaa"},
	}

	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, transactions); err != nil {
		t.Fatalf("EncodeTransactions() error = %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Fatalf("encoded %d lines, want 2", n)
	}

	decoded, err := DecodeTransactions(&buf)
	if err != nil {
		t.Fatalf("DecodeTransactions() error = %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d transactions, want 2", len(decoded))
	}
	// canonical order is chronological
	if decoded[0].ID != "t1" || decoded[1].ID != "t2" {
		t.Errorf("order = %s, %s; want t1, t2", decoded[0].ID, decoded[1].ID)
	}
	if !decoded[0].Quantity.Equal(Q(1)) || !decoded[0].UnitPrice.Equal(M(30000)) {
		t.Errorf("t1 round-tripped as %+v", decoded[0])
	}
	if decoded[0].CorrelationKey != "0xaa" {
		t.Errorf("correlation key = %q, want 0xaa", decoded[0].CorrelationKey)
	}
}

func TestDecodeTransactions_SkipsBlankLines(t *testing.T) {
	input := `{"id":"t1","timestamp":"2024-01-01T10:00:00Z","type":"buy","asset":"BTC","quantity":1,"subtotal":30000,"institution":"coinbase"}

{"id":"t2","timestamp":"2024-02-01T10:00:00Z","type":"sell","asset":"BTC","quantity":1,"subtotal":40000,"institution":"coinbase"}
`
	decoded, err := DecodeTransactions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeTransactions() error = %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("decoded %d transactions, want 2", len(decoded))
	}
}

func TestDecodeTransactions_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"not json", "not json at all\n"},
		{"missing asset", `{"id":"t1","timestamp":"2024-01-01T10:00:00Z","type":"buy","quantity":1}` + "\n"},
		{"negative quantity", `{"id":"t1","timestamp":"2024-01-01T10:00:00Z","type":"buy","asset":"BTC","quantity":-1}` + "\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := DecodeTransactions(strings.NewReader(c.input)); err == nil {
				t.Error("DecodeTransactions accepted invalid input")
			}
		})
	}
}

func TestEncodeDecodeRecords(t *testing.T) {
	records := []TaxLotRecord{{
		Asset:             "BTC",
		Quantity:          Q(1),
		AcquisitionDate:   NewDate(2024, time.January, 10),
		DisposalDate:      NewDate(2024, time.June, 10),
		Proceeds:          M(239990),
		CostBasis:         M(200100),
		GainLoss:          M(39890),
		HoldingPeriodDays: 152,
		DisposalTxID:      "s1",
		DisposalType:      Sell,
		AcquisitionType:   Buy,
	}}

	var buf bytes.Buffer
	if err := EncodeRecords(&buf, records); err != nil {
		t.Fatalf("EncodeRecords() error = %v", err)
	}
	decoded, err := DecodeRecords(&buf)
	if err != nil {
		t.Fatalf("DecodeRecords() error = %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("decoded %d records, want 1", len(decoded))
	}
	r := decoded[0]
	if !r.GainLoss.Equal(M(39890)) || r.HoldingPeriodDays != 152 {
		t.Errorf("record round-tripped as %+v", r)
	}
	if r.AcquisitionDate != NewDate(2024, time.January, 10) {
		t.Errorf("acquisition date = %s, want 2024-01-10", r.AcquisitionDate)
	}
}
