/*
Package inventory defines the domain model for the stock count service.

PURPOSE:
  One recorded observation is "we counted this much of this item at this
  location at this time". The package holds the two schema shapes of that
  idea, the typed operation inputs with their validation, the error
  taxonomy, and the Store interface the SQL backends implement.

TWO SHAPES:
  Flat:       a single stock_counts table, free-form item names and locations.
  Normalized: an items catalog (optionally keyed by PLU) referenced by
              counts rows whose location is a closed enum (bar, cooler).

  Both shapes ship in every backend; the mode selected at startup decides
  which tables are migrated and which endpoints are mounted.

PRECISION:
  Quantities are decimal.Decimal with two fractional digits, never floats.
  The stores persist them as DECIMAL(10,2) (or NUMERIC in SQLite).

SEE ALSO:
  - store.go: Store interface
  - errors.go: error taxonomy
  - store/sqlite, store/mysql: backends
*/
package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Mode selects which schema shape the service runs.
type Mode string

const (
	// ModeFlat stores every observation field in one stock_counts table.
	ModeFlat Mode = "flat"

	// ModeNormalized separates item identity (items) from count events (counts).
	ModeNormalized Mode = "normalized"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFlat, ModeNormalized:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown stock mode %q (want %q or %q)", s, ModeFlat, ModeNormalized)
}

// Location is the closed set of places counts are taken in normalized mode.
type Location string

const (
	LocationBar    Location = "bar"
	LocationCooler Location = "cooler"
)

// ParseLocation validates a location string against the enum.
func ParseLocation(s string) (Location, error) {
	switch Location(s) {
	case LocationBar, LocationCooler:
		return Location(s), nil
	}
	return "", fmt.Errorf("location must be %q or %q, got %q", LocationBar, LocationCooler, s)
}

// =============================================================================
// FLAT MODE
// =============================================================================

// StockCount is one observation row in flat mode.
//
// CountedAt is kept as the literal string the store returned; the service
// never parses it, it only passes it through (and the store's DATE()
// truncation interprets it for filtering).
type StockCount struct {
	ID        int64
	ItemName  string
	Quantity  decimal.Decimal
	Location  string
	CountedAt string
}

// =============================================================================
// NORMALIZED MODE
// =============================================================================

// Item is a catalog entry for a countable good. PLU is the optional external
// product lookup code; unique when present, nil PLUs never collide.
type Item struct {
	ID   int64
	PLU  *string
	Name string
}

// Count is one observation row referencing an Item.
type Count struct {
	ID        int64
	ItemID    int64
	Location  Location
	Qty       decimal.Decimal
	CountedAt string
}

// ItemSummary is one row of the per-item, per-location aggregate.
// Items with no counts report zero, not null.
type ItemSummary struct {
	ID        int64
	Name      string
	PLU       *string
	BarQty    decimal.Decimal
	CoolerQty decimal.Decimal
}
