package capgains

import (
	"testing"
	"time"
)

// at builds a timestamp on a given day, hour offset keeping intra-day order.
func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestLedger_FIFOConsumptionOrder(t *testing.T) {
	ledger := NewLedger(StablecoinOracle{}, nil, ProcessOptions{})
	records, err := ledger.Process([]Transaction{
		{ID: "b1", Timestamp: at(2024, time.January, 1, 10), Type: Buy, Asset: "SOL", Quantity: Q(5), Subtotal: M(500), Institution: "kraken"},
		{ID: "b2", Timestamp: at(2024, time.February, 1, 10), Type: Buy, Asset: "SOL", Quantity: Q(5), Subtotal: M(1000), Institution: "kraken"},
		{ID: "s1", Timestamp: at(2024, time.March, 1, 10), Type: Sell, Asset: "SOL", Quantity: Q(7), Subtotal: M(2100), Institution: "kraken"},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (one per consumed lot)", len(records))
	}

	// 5 units from the first lot at $100, 2 from the second at $200.
	if !records[0].Quantity.Equal(Q(5)) || !records[0].CostBasis.Equal(M(500)) {
		t.Errorf("first slice = %s units costing %s, want 5 costing $500", records[0].Quantity, records[0].CostBasis)
	}
	if !records[1].Quantity.Equal(Q(2)) || !records[1].CostBasis.Equal(M(400)) {
		t.Errorf("second slice = %s units costing %s, want 2 costing $400", records[1].Quantity, records[1].CostBasis)
	}
	if records[0].AcquisitionDate != NewDate(2024, time.January, 1) {
		t.Errorf("first slice acquired %s, want 2024-01-01", records[0].AcquisitionDate)
	}

	// 3 units of the February lot remain open.
	if open := ledger.OpenQuantity("SOL"); !open.Equal(Q(3)) {
		t.Errorf("open quantity = %s, want 3", open)
	}
	lots := ledger.OpenLots("SOL")
	if len(lots) != 1 || lots[0].Acquired != NewDate(2024, time.February, 1) {
		t.Errorf("open lots = %+v, want the February lot only", lots)
	}
}

func TestLedger_DisposalProceedsAndGain(t *testing.T) {
	// Buy 4 BTC for $200,000 plus $100 fees: basis $200,100 at $50,025/unit.
	// Sell all 152 days later for $240,000 minus $10 fees: gain $39,890.
	ledger := NewLedger(StablecoinOracle{}, nil, ProcessOptions{})
	records, err := ledger.Process([]Transaction{
		{ID: "b1", Timestamp: at(2024, time.January, 10, 10), Type: Buy, Asset: "BTC", Quantity: Q(4), Subtotal: M(200000), Fees: M(100), Institution: "coinbase"},
		{ID: "s1", Timestamp: at(2024, time.June, 10, 10), Type: Sell, Asset: "BTC", Quantity: Q(4), Subtotal: M(240000), Fees: M(10), Institution: "coinbase"},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if !r.CostBasis.Equal(M(200100)) {
		t.Errorf("cost basis = %s, want $200,100", r.CostBasis)
	}
	if !r.Proceeds.Equal(M(239990)) {
		t.Errorf("proceeds = %s, want $239,990", r.Proceeds)
	}
	if !r.GainLoss.Equal(M(39890)) {
		t.Errorf("gain = %s, want $39,890", r.GainLoss)
	}
	if r.HoldingPeriodDays != 152 {
		t.Errorf("holding period = %d days, want 152", r.HoldingPeriodDays)
	}
}

func TestLedger_ShortfallEmitsZeroBasisRecord(t *testing.T) {
	ledger := NewLedger(StablecoinOracle{}, nil, ProcessOptions{})
	records, err := ledger.Process([]Transaction{
		{ID: "b1", Timestamp: at(2024, time.January, 1, 10), Type: Buy, Asset: "ETH", Quantity: Q(6), Subtotal: M(12000), Institution: "kraken"},
		{ID: "s1", Timestamp: at(2024, time.June, 1, 10), Type: Sell, Asset: "ETH", Quantity: Q(10), Subtotal: M(30000), Institution: "kraken"},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (covered slice + shortfall)", len(records))
	}

	covered, short := records[0], records[1]
	if covered.Shortfall {
		t.Error("covered slice must not be flagged as shortfall")
	}
	if !covered.Quantity.Equal(Q(6)) || !covered.CostBasis.Equal(M(12000)) {
		t.Errorf("covered slice = %s units costing %s, want 6 costing $12,000", covered.Quantity, covered.CostBasis)
	}
	if !short.Shortfall {
		t.Fatal("excess slice must be flagged as shortfall")
	}
	if !short.Quantity.Equal(Q(4)) {
		t.Errorf("shortfall quantity = %s, want 4", short.Quantity)
	}
	if !short.CostBasis.IsZero() {
		t.Errorf("shortfall cost basis = %s, want zero", short.CostBasis)
	}
	// 4/10 of the $30,000 proceeds realize with zero basis.
	if !short.GainLoss.Equal(M(12000)) {
		t.Errorf("shortfall gain = %s, want $12,000", short.GainLoss)
	}
	if short.AcquisitionType != AcquisitionUnknown {
		t.Errorf("shortfall acquisition type = %s, want %s", short.AcquisitionType, AcquisitionUnknown)
	}
	if q := ledger.Quality(); q.Shortfalls != 1 {
		t.Errorf("shortfall counter = %d, want 1", q.Shortfalls)
	}
}

func TestLedger_StakingRewardValuedAtMarket(t *testing.T) {
	oracle := NewMemoryOracle()
	oracle.Set("ETH", NewDate(2024, time.March, 1), M(2000))

	ledger := NewLedger(oracle, nil, ProcessOptions{})
	records, err := ledger.Process([]Transaction{
		{ID: "r1", Timestamp: at(2024, time.March, 1, 10), Type: StakingReward, Asset: "ETH", Quantity: Q(1), Institution: "lido"},
		{ID: "s1", Timestamp: at(2024, time.April, 1, 10), Type: Sell, Asset: "ETH", Quantity: Q(1), Subtotal: M(2250), Institution: "kraken"},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if !records[0].CostBasis.Equal(M(2000)) {
		t.Errorf("cost basis = %s, want the $2,000 market value at receipt", records[0].CostBasis)
	}
	if !records[0].GainLoss.Equal(M(250)) {
		t.Errorf("gain = %s, want $250", records[0].GainLoss)
	}
	if records[0].AcquisitionType != StakingReward {
		t.Errorf("acquisition type = %s, want %s", records[0].AcquisitionType, StakingReward)
	}
}

func TestLedger_IncomeWithoutPriceDegradesToZero(t *testing.T) {
	ledger := NewLedger(NewMemoryOracle(), nil, ProcessOptions{})
	records, err := ledger.Process([]Transaction{
		{ID: "r1", Timestamp: at(2024, time.March, 1, 10), Type: Interest, Asset: "ATOM", Quantity: Q(10), Institution: "kraken"},
		{ID: "s1", Timestamp: at(2024, time.April, 1, 10), Type: Sell, Asset: "ATOM", Quantity: Q(10), Subtotal: M(150), Institution: "kraken"},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if !records[0].CostBasis.IsZero() || !records[0].ZeroPriced {
		t.Errorf("record = %+v, want zero-priced flag with zero basis", records[0])
	}
	q := ledger.Quality()
	if q.MissingPrices != 1 || q.ZeroPricedLots != 1 {
		t.Errorf("quality = %+v, want 1 missing price and 1 zero-priced lot", q)
	}
}

func TestLedger_ExplicitCostBasisBypassesQueue(t *testing.T) {
	ledger := NewLedger(StablecoinOracle{}, nil, ProcessOptions{})
	records, err := ledger.Process([]Transaction{
		{ID: "b1", Timestamp: at(2024, time.January, 1, 10), Type: Buy, Asset: "BTC", Quantity: Q(1), Subtotal: M(30000), Institution: "coinbase"},
		{ID: "s1", Timestamp: at(2024, time.June, 1, 10), Type: Sell, Asset: "BTC", Quantity: Q(1), Subtotal: M(40000), CostBasis: M(35000), Institution: "coinbase"},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].AcquisitionType != AcquisitionPreResolved {
		t.Errorf("acquisition type = %s, want %s", records[0].AcquisitionType, AcquisitionPreResolved)
	}
	if !records[0].CostBasis.Equal(M(35000)) {
		t.Errorf("cost basis = %s, want the $35,000 override", records[0].CostBasis)
	}
	// the queue was not consumed
	if open := ledger.OpenQuantity("BTC"); !open.Equal(Q(1)) {
		t.Errorf("open quantity = %s, want the untouched 1 BTC lot", open)
	}
}

func TestLedger_CashMovementsIgnored(t *testing.T) {
	ledger := NewLedger(StablecoinOracle{}, nil, ProcessOptions{})
	records, err := ledger.Process([]Transaction{
		{ID: "d1", Timestamp: at(2024, time.January, 1, 10), Type: Deposit, Asset: "USD", Quantity: Q(1000), Institution: "coinbase"},
		{ID: "w1", Timestamp: at(2024, time.February, 1, 10), Type: Withdrawal, Asset: "USD", Quantity: Q(500), Institution: "coinbase"},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want none for pure cash movements", len(records))
	}
	if assets := ledger.Assets(); len(assets) != 0 {
		t.Errorf("assets = %v, want none", assets)
	}
}

func TestLedger_RejectsInvalidInput(t *testing.T) {
	ledger := NewLedger(StablecoinOracle{}, nil, ProcessOptions{})
	_, err := ledger.Process([]Transaction{
		{ID: "b1", Timestamp: at(2024, time.January, 1, 10), Type: Buy, Quantity: Q(1)},
	})
	if err == nil {
		t.Fatal("Process() accepted a transaction without an asset")
	}
}

func TestLedger_ProcessesOutOfOrderInput(t *testing.T) {
	// The sell arrives first in the slice but last in time.
	ledger := NewLedger(StablecoinOracle{}, nil, ProcessOptions{})
	records, err := ledger.Process([]Transaction{
		{ID: "s1", Timestamp: at(2024, time.June, 1, 10), Type: Sell, Asset: "BTC", Quantity: Q(1), Subtotal: M(40000), Institution: "coinbase"},
		{ID: "b1", Timestamp: at(2024, time.January, 1, 10), Type: Buy, Asset: "BTC", Quantity: Q(1), Subtotal: M(30000), Institution: "coinbase"},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(records) != 1 || records[0].Shortfall {
		t.Fatalf("records = %+v, want one covered slice", records)
	}
	if !records[0].GainLoss.Equal(M(10000)) {
		t.Errorf("gain = %s, want $10,000", records[0].GainLoss)
	}
}
