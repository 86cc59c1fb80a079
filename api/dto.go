/*
dto.go - Request and response shapes for the HTTP API

NAMING CONVENTION:
  *Request: request body types from clients
  *DTO:     response types returned to clients

Quantities cross the wire as JSON numbers (float64 in the DTOs); the domain
keeps them as decimal.Decimal internally.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/stock-api/inventory"
)

// ErrorResponse is the JSON error envelope every failure is converted to.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// StockCountRequest is the body of POST /api/stock.
// Quantity is a pointer so a missing field is distinguishable from zero.
type StockCountRequest struct {
	ItemName  string           `json:"item_name"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Location  string           `json:"location"`
	CountedAt string           `json:"counted_at,omitempty"`
}

// StockCountDTO is one observation row in GET /api/stock responses.
type StockCountDTO struct {
	ID        int64   `json:"id"`
	ItemName  string  `json:"item_name"`
	Quantity  float64 `json:"quantity"`
	Location  string  `json:"location"`
	CountedAt string  `json:"counted_at"`
}

func newStockCountDTO(c inventory.StockCount) StockCountDTO {
	return StockCountDTO{
		ID:        c.ID,
		ItemName:  c.ItemName,
		Quantity:  c.Quantity.InexactFloat64(),
		Location:  c.Location,
		CountedAt: c.CountedAt,
	}
}

// SeedItemsRequest is the body of POST /api/items/seed.
type SeedItemsRequest struct {
	Items []SeedItemRequest `json:"items"`
}

// SeedItemRequest is one element of a seed batch.
type SeedItemRequest struct {
	PLU  *string `json:"plu,omitempty"`
	Name string  `json:"name"`
}

// ItemDTO is one catalog entry in GET /api/items responses.
type ItemDTO struct {
	ID   int64   `json:"id"`
	PLU  *string `json:"plu"`
	Name string  `json:"name"`
}

// CountRequest is the body of POST /api/counts.
type CountRequest struct {
	ItemID   int64            `json:"itemId"`
	Location string           `json:"location"`
	Qty      *decimal.Decimal `json:"qty"`
}

// SummaryDTO is one row of GET /api/summary. Items with no counts report
// zero for both locations.
type SummaryDTO struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	PLU       *string `json:"plu"`
	BarQty    float64 `json:"bar_qty"`
	CoolerQty float64 `json:"cooler_qty"`
}
