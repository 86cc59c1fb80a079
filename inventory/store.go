/*
store.go - Storage interface

PURPOSE:
  One polymorphic interface covering both schema shapes; the SQLite and
  MySQL backends implement all of it, and the mode selected at startup
  decides which half the router actually exposes.

CONTRACT:
  - Migrate is idempotent: safe to run on every startup against an
    already-initialized database, creating parent tables before children.
  - Writes validate nothing themselves; callers pass pre-validated inputs.
    Exactly one row is appended per successful insert.
  - Rows are never updated or deleted by the service; items mutate only
    via the upsert in SeedItems.
  - Every method takes the request context, so a request waiting on a
    saturated pool fails with the context error instead of queuing forever.
*/
package inventory

import "context"

// ListFilter narrows ListStockCounts. A zero filter returns the newest 200.
type ListFilter struct {
	// Date is a calendar date ("2025-11-05"); when set, only observations
	// whose counted_at falls on that date are returned.
	Date string
}

// Store is the persistence contract implemented by store/sqlite and
// store/mysql.
type Store interface {
	// Migrate ensures the tables for the given mode exist.
	Migrate(ctx context.Context, mode Mode) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// InsertStockCount appends one flat-mode observation and returns the
	// generated identifier.
	InsertStockCount(ctx context.Context, in StockCountInput) (int64, error)

	// ListStockCounts returns observations, newest first. Without a date
	// filter the page is bounded to 200 rows; with one it returns every
	// observation on that date ordered counted_at DESC, item_name ASC.
	ListStockCounts(ctx context.Context, f ListFilter) ([]StockCount, error)

	// SeedItems upserts catalog entries keyed on PLU and returns how many
	// elements were applied. On a mid-batch failure the count covers the
	// elements applied before the error; earlier writes are not rolled back.
	SeedItems(ctx context.Context, items []ItemSeed) (int, error)

	// ListItems returns the whole catalog ordered by name ascending.
	ListItems(ctx context.Context) ([]Item, error)

	// InsertCount appends one normalized-mode count. The item_id foreign
	// key is enforced by the store and surfaces as a *ConstraintError.
	InsertCount(ctx context.Context, in CountInput) error

	// Summarize returns one row per item (zero-count items included) with
	// the qty sums for the bar and cooler locations, ordered by name.
	Summarize(ctx context.Context) ([]ItemSummary, error)

	Close() error
}
