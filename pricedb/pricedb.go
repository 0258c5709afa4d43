// Package pricedb persists daily asset prices in a local SQLite file and
// serves them back as a price oracle.
package pricedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	capgains "github.com/mjbr/capgains"
)

// DB is a durable daily price store. It implements capgains.PriceOracle.
type DB struct {
	db *sql.DB
}

// Open opens (and if needed creates) the price database at path.
func Open(path string) (*DB, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS prices (
			asset TEXT NOT NULL,
			day TEXT NOT NULL,
			price TEXT NOT NULL,
			PRIMARY KEY (asset, day)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error { return d.db.Close() }

// Put inserts or replaces the price of an asset on a day. The price is
// stored as a decimal string, never as a float.
func (d *DB) Put(asset string, on capgains.Date, price capgains.Money) error {
	_, err := d.db.Exec(`
		INSERT INTO prices (asset, day, price)
		VALUES (?, ?, ?)
		ON CONFLICT(asset, day) DO UPDATE SET price = excluded.price
	`, asset, on.String(), price.Decimal().String())
	return err
}

// PutBatch stores a batch of daily prices for one asset in a single
// transaction.
func (d *DB) PutBatch(asset string, prices map[capgains.Date]capgains.Money) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO prices (asset, day, price)
		VALUES (?, ?, ?)
		ON CONFLICT(asset, day) DO UPDATE SET price = excluded.price
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for on, price := range prices {
		if _, err := stmt.Exec(asset, on.String(), price.Decimal().String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Price returns the price of asset on the given day, or the most recent
// stored price before it. Daily feeds have occasional gaps.
func (d *DB) Price(asset string, on capgains.Date) (capgains.Money, bool) {
	row := d.db.QueryRow(`
		SELECT price FROM prices
		WHERE asset = ? AND day <= ?
		ORDER BY day DESC LIMIT 1
	`, asset, on.String())
	var raw string
	if err := row.Scan(&raw); err != nil {
		return capgains.Money{}, false
	}
	price, err := capgains.ParseMoney(raw)
	if err != nil {
		return capgains.Money{}, false
	}
	return price, true
}

// Assets returns the distinct assets with at least one stored price.
func (d *DB) Assets() ([]string, error) {
	rows, err := d.db.Query("SELECT DISTINCT asset FROM prices ORDER BY asset")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// Range returns the earliest and latest stored day for an asset, or
// ok=false when no prices are stored.
func (d *DB) Range(asset string) (from, to capgains.Date, ok bool) {
	row := d.db.QueryRow("SELECT MIN(day), MAX(day) FROM prices WHERE asset = ?", asset)
	var minDay, maxDay sql.NullString
	if err := row.Scan(&minDay, &maxDay); err != nil || !minDay.Valid {
		return from, to, false
	}
	from, err := capgains.ParseDate(minDay.String)
	if err != nil {
		return from, to, false
	}
	to, err = capgains.ParseDate(maxDay.String)
	if err != nil {
		return from, to, false
	}
	return from, to, true
}

var _ capgains.PriceOracle = (*DB)(nil)
