/*
Package mysql provides the MySQL-backed implementation of inventory.Store.

PURPOSE:
  The production backend. Same contract as store/sqlite; only the DDL and
  the upsert/constraint details differ by dialect.

POOL:
  database/sql owns the pool. Capacity is capped at 10 concurrent
  connections; callers waiting for a free connection are bounded by their
  request context deadline, not by the pool.

SCHEMA:
  InnoDB, utf8mb4. counts.item_id carries a real foreign key with
  ON DELETE CASCADE; deleting an item takes its counts with it.

SEE ALSO:
  - inventory/store.go: interface contract
  - store/sqlite: development/test backend
*/
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/warp/stock-api/inventory"
)

const (
	maxOpenConns    = 10
	connMaxLifetime = 3 * time.Minute
)

// Config holds the connection parameters for the MySQL store.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func (c Config) dsn() string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = c.Host + ":" + c.Port
	mc.User = c.User
	mc.Passwd = c.Password
	mc.DBName = c.DBName
	return mc.FormatDSN()
}

// Store implements inventory.Store using MySQL.
type Store struct {
	db *sql.DB
}

// New opens a pooled connection to MySQL and verifies it is reachable.
func New(cfg Config) (*Store, error) {
	db, err := sql.Open("mysql", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s:%s: %w", cfg.Host, cfg.Port, err)
	}
	return &Store{db: db}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the tables for the given mode, parents before children.
// Idempotent: safe to run on every startup. MySQL executes one statement
// per round trip, hence the slice.
func (s *Store) Migrate(ctx context.Context, mode inventory.Mode) error {
	var stmts []string
	switch mode {
	case inventory.ModeFlat:
		stmts = []string{`
			CREATE TABLE IF NOT EXISTS stock_counts (
				id INT AUTO_INCREMENT PRIMARY KEY,
				item_name VARCHAR(255) NOT NULL,
				quantity DECIMAL(10,2) NOT NULL DEFAULT 0,
				location VARCHAR(100) NOT NULL,
				counted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	case inventory.ModeNormalized:
		stmts = []string{`
			CREATE TABLE IF NOT EXISTS items (
				id INT AUTO_INCREMENT PRIMARY KEY,
				plu VARCHAR(64) NULL UNIQUE,
				name VARCHAR(255) NOT NULL
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
			CREATE TABLE IF NOT EXISTS counts (
				id INT AUTO_INCREMENT PRIMARY KEY,
				item_id INT NOT NULL,
				location ENUM('bar', 'cooler') NOT NULL,
				qty DECIMAL(10,2) NOT NULL DEFAULT 0,
				counted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				CONSTRAINT fk_counts_item FOREIGN KEY (item_id)
					REFERENCES items(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// =============================================================================
// FLAT MODE
// =============================================================================

// InsertStockCount appends one observation and returns the generated id.
func (s *Store) InsertStockCount(ctx context.Context, in inventory.StockCountInput) (int64, error) {
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

// SeedItems upserts catalog entries one by one, keyed on PLU.
func (s *Store) SeedItems(ctx context.Context, items []inventory.ItemSeed) (int, error) {
	query := `
		INSERT INTO items (plu, name) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name)
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
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO counts (item_id, location, qty) VALUES (?, ?, ?)",
		in.ItemID, in.Location, in.Qty.StringFixed(2),
	)
	if err != nil {
		return classify(err)
	}
	return nil
}

// Summarize pivots per-location qty sums into one row per item.
func (s *Store) Summarize(ctx context.Context) ([]inventory.ItemSummary, error) {
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

// MySQL error numbers for constraint rejections.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
	errRowIsReferenced = 1451
	errBadNull         = 1048
	errCheckViolated   = 3819
)

// classify maps driver constraint errors onto inventory.ConstraintError so
// the API layer can answer 409 instead of a blanket 500.
func classify(err error) error {
	var merr *mysql.MySQLError
	if !errors.As(err, &merr) {
		return err
	}

	var kind string
	switch merr.Number {
	case errDupEntry:
		kind = "unique"
	case errNoReferencedRow, errRowIsReferenced:
		kind = "foreign key"
	case errBadNull, errCheckViolated:
		kind = "check"
	default:
		return err
	}
	return &inventory.ConstraintError{Kind: kind, Err: err}
}
