/*
handlers.go - HTTP handlers for the stock count service

PURPOSE:
  Translates HTTP requests into store operations. Handlers decode the
  body, build a typed inventory input, validate it, and only then touch
  the store; a request failing validation performs no I/O at all.

ENDPOINTS:
  Always:
    GET  /            plain-text liveness string
    GET  /api/ping    {pong: true}
    GET  /health      {ok: true} or 500 {ok:false, error}
    GET  /api/health  same as /health

  Flat mode:
    POST /api/stock   record one observation -> {ok:true, id}
    GET  /api/stock   list observations, optional ?date=YYYY-MM-DD

  Normalized mode:
    POST /api/items/seed  upsert catalog entries -> {ok:true, inserted:N}
    GET  /api/items       catalog ordered by name
    POST /api/counts      record one count -> {ok:true}
    GET  /api/summary     per-item bar/cooler totals

ERROR HANDLING:
  Everything is caught at this boundary and converted to the JSON
  envelope {ok:false, error}:
  - 400: validation failures (message names the offending fields)
  - 409: store constraint rejections (FK, unique)
  - 500: connection loss, pool not ready, anything unexpected

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
  - inventory: domain inputs, validation, error taxonomy
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/warp/stock-api/inventory"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	Store inventory.Store
	Mode  inventory.Mode
}

// NewHandler creates a handler bound to the given store and mode.
func NewHandler(store inventory.Store, mode inventory.Mode) *Handler {
	return &Handler{Store: store, Mode: mode}
}

// ready guards against requests arriving before bootstrap wired a store.
// The server normally only starts after bootstrap, so this is a backstop.
func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.Store == nil {
		writeError(w, http.StatusInternalServerError, inventory.ErrNotReady)
		return false
	}
	return true
}

// =============================================================================
// LIVENESS / HEALTH
// =============================================================================

// Root answers the plain-text liveness string.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("stock-api up"))
}

// Ping answers {pong:true} without touching the store.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"pong": true})
}

// Health verifies the store is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// =============================================================================
// FLAT MODE
// =============================================================================

// RecordStockCount appends one observation and returns its id.
func (h *Handler) RecordStockCount(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req StockCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, &inventory.ValidationError{Fields: []string{"invalid JSON body"}})
		return
	}

	in := inventory.StockCountInput{
		ItemName:  req.ItemName,
		Quantity:  req.Quantity,
		Location:  req.Location,
		CountedAt: req.CountedAt,
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := h.Store.InsertStockCount(r.Context(), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

// ListStockCounts returns observations, optionally filtered to one date.
func (h *Handler) ListStockCounts(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	filter := inventory.ListFilter{Date: r.URL.Query().Get("date")}
	counts, err := h.Store.ListStockCounts(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	rows := make([]StockCountDTO, len(counts))
	for i, c := range counts {
		rows[i] = newStockCountDTO(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rows": rows})
}

// =============================================================================
// NORMALIZED MODE
// =============================================================================

// SeedItems upserts a batch of catalog entries keyed on PLU.
func (h *Handler) SeedItems(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req SeedItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Items == nil {
		writeError(w, http.StatusBadRequest, &inventory.ValidationError{Fields: []string{"items must be an array"}})
		return
	}

	seeds := make([]inventory.ItemSeed, len(req.Items))
	for i, it := range req.Items {
		seed := inventory.ItemSeed{PLU: it.PLU, Name: it.Name}
		if err := seed.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		seeds[i] = seed
	}

	inserted, err := h.Store.SeedItems(r.Context(), seeds)
	if err != nil {
		// Partial application is possible; the error reports where it stopped.
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "inserted": inserted})
}

// ListItems returns the whole catalog ordered by name.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = ItemDTO{ID: it.ID, PLU: it.PLU, Name: it.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordCount appends one count referencing a catalog item.
func (h *Handler) RecordCount(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var req CountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, &inventory.ValidationError{Fields: []string{"invalid JSON body"}})
		return
	}

	in := inventory.CountInput{
		ItemID:   req.ItemID,
		Location: req.Location,
		Qty:      req.Qty,
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Store.InsertCount(r.Context(), in); err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Summarize returns the per-item bar/cooler totals.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	summaries, err := h.Store.Summarize(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	dtos := make([]SummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = SummaryDTO{
			ID:        s.ID,
			Name:      s.Name,
			PLU:       s.PLU,
			BarQty:    s.BarQty.InexactFloat64(),
			CoolerQty: s.CoolerQty.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{OK: false, Error: err.Error()})
}

// writeStoreError maps a store failure onto the HTTP status taxonomy.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case inventory.IsValidation(err):
		writeError(w, http.StatusBadRequest, err)
	case inventory.IsConstraint(err):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, inventory.ErrNotReady):
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
