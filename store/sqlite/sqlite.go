/*
Package sqlite provides a SQLite-backed implementation of inventory.Store.

PURPOSE:
  The local-development and test backend. Production deployments run the
  MySQL backend; the SQL here is kept deliberately close so the two stay
  interchangeable behind inventory.Store.

APPEND-MOSTLY ENFORCEMENT:
  stock_counts and counts rows are only ever inserted and read; there are
  no UPDATE or DELETE statements on them. items rows mutate only through
  the PLU upsert in SeedItems.

FOREIGN KEYS:
  SQLite only enforces foreign keys when asked; the DSN enables them, so
  counts.item_id -> items.id behaves like the MySQL schema (including
  ON DELETE CASCADE).

WAL MODE:
  Opened with WAL journaling so readers don't block during inserts.

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil { ... }
  defer store.Close()
  if err := store.Migrate(ctx, inventory.ModeNormalized); err != nil { ... }

SEE ALSO:
  - inventory/store.go: interface contract
  - store/mysql: production backend
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"

	"github.com/warp/stock-api/inventory"
)

// Store implements inventory.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and verifies the
// connection. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A ":memory:" database exists per connection; pin the pool to one so
	// every query sees the same database. SQLite is single-writer anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the tables for the given mode, parents before children.
// Idempotent: safe to run on every startup.
//
// counted_at is declared TEXT, not TIMESTAMP: the driver converts
// TIMESTAMP-declared columns to time.Time on scan, which would reformat
// the pass-through value. TEXT keeps the literal bytes, and DATE() and
// the DESC ordering work on the ISO layout either way.
func (s *Store) Migrate(ctx context.Context, mode inventory.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var schema string
	switch mode {
	case inventory.ModeFlat:
		schema = `
		CREATE TABLE IF NOT EXISTS stock_counts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_name TEXT NOT NULL,
			quantity NUMERIC NOT NULL DEFAULT 0,
			location TEXT NOT NULL,
			counted_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_stock_counts_counted_at
			ON stock_counts(counted_at);
		`
	case inventory.ModeNormalized:
		schema = `
		CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			plu TEXT UNIQUE,
			name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS counts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			location TEXT NOT NULL CHECK (location IN ('bar', 'cooler')),
			qty NUMERIC NOT NULL DEFAULT 0,
			counted_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_counts_item
			ON counts(item_id);
		`
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// =============================================================================
// FLAT MODE
// =============================================================================

// InsertStockCount appends one observation and returns the generated id.
// A supplied counted_at is passed through verbatim; otherwise the column
// default (CURRENT_TIMESTAMP) applies.
func (s *Store) InsertStockCount(ctx context.Context, in inventory.StockCountInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res sql.Result
		err error
	)
	if in.CountedAt != "" {
		res, err = s.db.ExecContext(ctx,
			"INSERT INTO stock_counts (item_name, quantity, location, counted_at) VALUES (?, ?, ?, ?)",
			in.ItemName, in.Quantity.StringFixed(2), in.Location, in.CountedAt,
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			"INSERT INTO stock_counts (item_name, quantity, location) VALUES (?, ?, ?)",
			in.ItemName, in.Quantity.StringFixed(2), in.Location,
		)
	}
	if err != nil {
		return 0, classify(err)
	}
	return res.LastInsertId()
}

// ListStockCounts returns observations newest first; see inventory.Store.
func (s *Store) ListStockCounts(ctx context.Context, f inventory.ListFilter) ([]inventory.StockCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		rows *sql.Rows
		err  error
	)
	if f.Date != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, item_name, quantity, location, counted_at
			FROM stock_counts
			WHERE DATE(counted_at) = ?
			ORDER BY counted_at DESC, item_name ASC`,
			f.Date,
		)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, item_name, quantity, location, counted_at
			FROM stock_counts
			ORDER BY counted_at DESC
			LIMIT 200`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query stock counts: %w", err)
	}
	defer rows.Close()

	var counts []inventory.StockCount
	for rows.Next() {
		var c inventory.StockCount
		if err := rows.Scan(&c.ID, &c.ItemName, &c.Quantity, &c.Location, &c.CountedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// =============================================================================
// NORMALIZED MODE
// =============================================================================

// SeedItems upserts catalog entries one by one, keyed on PLU. A nil PLU
// never matches an existing row, so it always inserts.
func (s *Store) SeedItems(ctx context.Context, items []inventory.ItemSeed) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO items (plu, name) VALUES (?, ?)
		ON CONFLICT(plu) DO UPDATE SET name = excluded.name
	`

	processed := 0
	for i, item := range items {
		if _, err := s.db.ExecContext(ctx, query, nullString(item.PLU), item.Name); err != nil {
			return processed, fmt.Errorf("failed to seed item %d: %w", i, classify(err))
		}
		processed++
	}
	return processed, nil
}

// ListItems returns the catalog ordered by name ascending.
func (s *Store) ListItems(ctx context.Context) ([]inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, plu, name FROM items ORDER BY name ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []inventory.Item
	for rows.Next() {
		var (
			item inventory.Item
			plu  sql.NullString
		)
		if err := rows.Scan(&item.ID, &plu, &item.Name); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if plu.Valid {
			item.PLU = &plu.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// InsertCount appends one count row. The foreign key rejects unknown items.
func (s *Store) InsertCount(ctx context.Context, in inventory.CountInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO counts (item_id, location, qty) VALUES (?, ?, ?)",
		in.ItemID, in.Location, in.Qty.StringFixed(2),
	)
	if err != nil {
		return classify(err)
	}
	return nil
}

// Summarize pivots per-location qty sums into one row per item. Items with
// no counts report zero for both locations via COALESCE.
func (s *Store) Summarize(ctx context.Context) ([]inventory.ItemSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.name, i.plu,
		       COALESCE(SUM(CASE WHEN c.location = 'bar' THEN c.qty END), 0) AS bar_qty,
		       COALESCE(SUM(CASE WHEN c.location = 'cooler' THEN c.qty END), 0) AS cooler_qty
		FROM items i
		LEFT JOIN counts c ON c.item_id = i.id
		GROUP BY i.id, i.name, i.plu
		ORDER BY i.name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer rows.Close()

	var summaries []inventory.ItemSummary
	for rows.Next() {
		var (
			sum inventory.ItemSummary
			plu sql.NullString
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &plu, &sum.BarQty, &sum.CoolerQty); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		if plu.Valid {
			sum.PLU = &plu.String
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// classify maps driver constraint errors onto inventory.ConstraintError so
// the API layer can answer 409 instead of a blanket 500.
func classify(err error) error {
	var serr sqlite3.Error
	if !errors.As(err, &serr) || serr.Code != sqlite3.ErrConstraint {
		return err
	}

	kind := "constraint"
	switch serr.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		kind = "foreign key"
	case sqlite3.ErrConstraintUnique:
		kind = "unique"
	case sqlite3.ErrConstraintCheck:
		kind = "check"
	}
	return &inventory.ConstraintError{Kind: kind, Err: err}
}
