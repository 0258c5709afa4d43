package capgains

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeTransactions decodes transactions from a stream of JSONL data,
// one transaction object per line, and returns them sorted by timestamp.
// Blank lines are skipped. Each decoded record is validated.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var transactions []Transaction
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}

		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return nil, fmt.Errorf("could not decode transaction at line %d: %w", line, err)
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("invalid transaction at line %d: %w", line, err)
		}
		transactions = append(transactions, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}

	slices.SortStableFunc(transactions, ByTimestamp)
	return transactions, nil
}

// EncodeTransaction marshals a single transaction to JSON and writes it
// to the writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeTransactions persists transactions to an io.Writer in JSONL
// format, sorted by timestamp. The sort is stable, so transactions at the
// same instant keep their relative order.
func EncodeTransactions(w io.Writer, transactions []Transaction) error {
	sorted := slices.Clone(transactions)
	slices.SortStableFunc(sorted, ByTimestamp)

	for _, tx := range sorted {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// EncodeRecords writes realized tax lot records in JSONL format, one
// record per line, in the order given.
func EncodeRecords(w io.Writer, records []TaxLotRecord) error {
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}

// DecodeRecords reads realized tax lot records from JSONL data.
func DecodeRecords(r io.Reader) ([]TaxLotRecord, error) {
	var records []TaxLotRecord
	scanner := bufio.NewScanner(r)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var rec TaxLotRecord
		if err := json.Unmarshal(lineBytes, &rec); err != nil {
			return nil, fmt.Errorf("could not decode record at line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return records, nil
}
