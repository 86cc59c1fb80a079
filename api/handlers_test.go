/*
handlers_test.go - End-to-end handler tests

Requests go through the real router (middleware included) against an
in-memory SQLite store, so these cover routing, decoding, validation,
status mapping, and the response envelopes in one pass.
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/stock-api/inventory"
	"github.com/warp/stock-api/store/sqlite"
)

func newServer(t *testing.T, mode inventory.Mode) (http.Handler, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background(), mode))

	return NewRouter(NewHandler(store, mode), []string{"*"}), store
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// =============================================================================
// LIVENESS / HEALTH
// =============================================================================

func TestRoot(t *testing.T) {
	h, _ := newServer(t, inventory.ModeFlat)
	rec := doJSON(t, h, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stock-api up", rec.Body.String())
}

func TestPing(t *testing.T) {
	h, _ := newServer(t, inventory.ModeFlat)
	rec := doJSON(t, h, http.MethodGet, "/api/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]bool
	decode(t, rec, &resp)
	assert.True(t, resp["pong"])
}

func TestHealth(t *testing.T) {
	h, _ := newServer(t, inventory.ModeFlat)

	for _, path := range []string{"/health", "/api/health"} {
		rec := doJSON(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var resp map[string]bool
		decode(t, rec, &resp)
		assert.True(t, resp["ok"], path)
	}
}

func TestNotReady(t *testing.T) {
	// A handler without a bootstrapped store answers the envelope, not a panic.
	h := NewRouter(NewHandler(nil, inventory.ModeFlat), []string{"*"})
	rec := doJSON(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "pool not ready")
}

// deadlineStore captures whether a store call arrived with a bounded
// context. Only Ping is ever invoked; the embedded nil interface would
// panic on anything else.
type deadlineStore struct {
	inventory.Store
	sawDeadline bool
}

func (s *deadlineStore) Ping(ctx context.Context) error {
	_, s.sawDeadline = ctx.Deadline()
	return nil
}

func TestAPIRoutesBoundStoreCalls(t *testing.T) {
	// Requests under /api must reach the store with a deadline, so a
	// request stuck waiting on a saturated pool fails instead of queuing
	// forever.
	store := &deadlineStore{}
	h := NewRouter(NewHandler(store, inventory.ModeFlat), []string{"*"})

	rec := doJSON(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.sawDeadline, "/api store calls must carry a context deadline")

	// The bare /health route sits outside the /api group; the contrast
	// shows the bound comes from the group's timeout middleware.
	store.sawDeadline = false
	rec = doJSON(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.sawDeadline)
}

// =============================================================================
// FLAT MODE
// =============================================================================

func TestRecordStockCount(t *testing.T) {
	h, _ := newServer(t, inventory.ModeFlat)

	// WHEN: recording a valid observation
	rec := doJSON(t, h, http.MethodPost, "/api/stock",
		`{"item_name":" Limes ","quantity":3.5,"location":"bar"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OK bool  `json:"ok"`
		ID int64 `json:"id"`
	}
	decode(t, rec, &resp)
	assert.True(t, resp.OK)
	assert.Equal(t, int64(1), resp.ID)

	// THEN: a subsequent listing includes the row, trimmed
	rec = doJSON(t, h, http.MethodGet, "/api/stock", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		OK   bool            `json:"ok"`
		Rows []StockCountDTO `json:"rows"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Rows, 1)
	assert.Equal(t, "Limes", list.Rows[0].ItemName)
	assert.Equal(t, 3.5, list.Rows[0].Quantity)
	assert.Equal(t, "bar", list.Rows[0].Location)
}

func TestRecordStockCount_QuantityAsString(t *testing.T) {
	// mysql2 clients send quantity either way; decimal accepts both.
	h, _ := newServer(t, inventory.ModeFlat)

	rec := doJSON(t, h, http.MethodPost, "/api/stock",
		`{"item_name":"Limes","quantity":"2.25","location":"bar"}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRecordStockCount_MissingFields(t *testing.T) {
	h, store := newServer(t, inventory.ModeFlat)

	rec := doJSON(t, h, http.MethodPost, "/api/stock", `{"quantity":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "item_name")
	assert.Contains(t, resp.Error, "location")

	// No row was written.
	rows, err := store.ListStockCounts(context.Background(), inventory.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecordStockCount_NegativeQuantity(t *testing.T) {
	h, _ := newServer(t, inventory.ModeFlat)

	rec := doJSON(t, h, http.MethodPost, "/api/stock",
		`{"item_name":"Limes","quantity":-1,"location":"bar"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStockCounts_DateFilter(t *testing.T) {
	h, _ := newServer(t, inventory.ModeFlat)

	for _, body := range []string{
		`{"item_name":"Limes","quantity":1,"location":"bar","counted_at":"2025-11-05 09:00:00"}`,
		`{"item_name":"Gin","quantity":1,"location":"bar","counted_at":"2025-11-06 09:00:00"}`,
	} {
		rec := doJSON(t, h, http.MethodPost, "/api/stock", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/stock?date=2025-11-05", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Rows []StockCountDTO `json:"rows"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Rows, 1)
	assert.Equal(t, "Limes", list.Rows[0].ItemName)
}

func TestFlatMode_HidesNormalizedRoutes(t *testing.T) {
	h, _ := newServer(t, inventory.ModeFlat)

	for _, path := range []string{"/api/summary", "/api/items"} {
		rec := doJSON(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

// =============================================================================
// NORMALIZED MODE
// =============================================================================

func TestSeedItems(t *testing.T) {
	h, _ := newServer(t, inventory.ModeNormalized)

	rec := doJSON(t, h, http.MethodPost, "/api/items/seed",
		`{"items":[{"plu":"4011","name":"Banana"},{"name":"House Red"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OK       bool `json:"ok"`
		Inserted int  `json:"inserted"`
	}
	decode(t, rec, &resp)
	assert.True(t, resp.OK)
	assert.Equal(t, 2, resp.Inserted)

	rec = doJSON(t, h, http.MethodGet, "/api/items", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []ItemDTO
	decode(t, rec, &items)
	require.Len(t, items, 2)
	assert.Equal(t, "Banana", items[0].Name)
	require.NotNil(t, items[0].PLU)
	assert.Equal(t, "4011", *items[0].PLU)
	assert.Nil(t, items[1].PLU)
}

func TestSeedItems_NotASequence(t *testing.T) {
	h, _ := newServer(t, inventory.ModeNormalized)

	for _, body := range []string{`{"items":"nope"}`, `{}`, `[]`} {
		rec := doJSON(t, h, http.MethodPost, "/api/items/seed", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRecordCountAndSummarize(t *testing.T) {
	h, _ := newServer(t, inventory.ModeNormalized)

	rec := doJSON(t, h, http.MethodPost, "/api/items/seed",
		`{"items":[{"plu":"1","name":"Gin"},{"plu":"2","name":"Limes"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, body := range []string{
		`{"itemId":1,"location":"bar","qty":5}`,
		`{"itemId":1,"location":"cooler","qty":3}`,
	} {
		rec := doJSON(t, h, http.MethodPost, "/api/counts", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sums []SummaryDTO
	decode(t, rec, &sums)
	require.Len(t, sums, 2)

	assert.Equal(t, "Gin", sums[0].Name)
	assert.Equal(t, 5.0, sums[0].BarQty)
	assert.Equal(t, 3.0, sums[0].CoolerQty)

	assert.Equal(t, "Limes", sums[1].Name)
	assert.Equal(t, 0.0, sums[1].BarQty, "zero-count item reports 0, not null")
	assert.Equal(t, 0.0, sums[1].CoolerQty)
}

func TestRecordCount_InvalidLocation(t *testing.T) {
	h, _ := newServer(t, inventory.ModeNormalized)

	rec := doJSON(t, h, http.MethodPost, "/api/items/seed", `{"items":[{"name":"Gin"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/counts",
		`{"itemId":1,"location":"fridge","qty":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.Contains(t, resp.Error, "location")

	// No row inserted: the summary still reports zero.
	rec = doJSON(t, h, http.MethodGet, "/api/summary", "")
	var sums []SummaryDTO
	decode(t, rec, &sums)
	require.Len(t, sums, 1)
	assert.Equal(t, 0.0, sums[0].BarQty)
	assert.Equal(t, 0.0, sums[0].CoolerQty)
}

func TestRecordCount_UnknownItem(t *testing.T) {
	h, _ := newServer(t, inventory.ModeNormalized)

	rec := doJSON(t, h, http.MethodPost, "/api/counts",
		`{"itemId":42,"location":"bar","qty":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	var resp ErrorResponse
	decode(t, rec, &resp)
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "constraint")
}

func TestNormalizedMode_HidesFlatRoutes(t *testing.T) {
	h, _ := newServer(t, inventory.ModeNormalized)

	rec := doJSON(t, h, http.MethodGet, "/api/stock", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
