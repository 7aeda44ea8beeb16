package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, products ...CatalogProduct) http.Handler {
	t.Helper()

	svc, _ := newTestService(products...)
	s := &Server{Svc: svc, Log: zap.NewNop()}

	return NewHandler(s, HTTPDeps{
		Log:     zap.NewNop(),
		Service: "cart",
	})
}

func doCart(t *testing.T, h http.Handler, method, path, userID string, body any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env Envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

// Envelope mirrors the kit response shape with a concrete cart payload.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeCart(t *testing.T, env Envelope) ExpandedCart {
	t.Helper()
	var ec ExpandedCart
	require.NoError(t, json.Unmarshal(env.Data, &ec))
	return ec
}

func TestHTTP_GetRequiresIdentity(t *testing.T) {
	h := newTestHandler(t)

	rec, env := doCart(t, h, http.MethodGet, "/cart", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestHTTP_GetReturnsEmptyCart(t *testing.T) {
	h := newTestHandler(t)

	rec, env := doCart(t, h, http.MethodGet, "/cart", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	ec := decodeCart(t, env)
	assert.Equal(t, "u1", ec.UserID)
	assert.Empty(t, ec.Items)
}

func TestHTTP_AddDefaultsQuantityToOne(t *testing.T) {
	h := newTestHandler(t, productX())

	rec, env := doCart(t, h, http.MethodPost, "/cart/add", "u1", map[string]any{"product_id": "px"})

	require.Equal(t, http.StatusOK, rec.Code)
	ec := decodeCart(t, env)
	require.Len(t, ec.Items, 1)
	assert.Equal(t, 1, ec.Items[0].Quantity)
}

func TestHTTP_AddMissingProductID(t *testing.T) {
	h := newTestHandler(t, productX())

	rec, env := doCart(t, h, http.MethodPost, "/cart/add", "u1", map[string]any{"quantity": 1})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "product_id required", env.Error)
}

func TestHTTP_AddUnknownProduct(t *testing.T) {
	h := newTestHandler(t)

	rec, env := doCart(t, h, http.MethodPost, "/cart/add", "u1", map[string]any{"product_id": "ghost"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", env.Error)
}

func TestHTTP_AddInsufficientStock(t *testing.T) {
	h := newTestHandler(t, CatalogProduct{ID: "py", PriceCents: 500, Stock: 2})

	rec, env := doCart(t, h, http.MethodPost, "/cart/add", "u1", map[string]any{
		"product_id": "py",
		"quantity":   5,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "insufficient stock", env.Error)
}

func TestHTTP_UpdateRequiresQuantityField(t *testing.T) {
	h := newTestHandler(t, productX())

	rec, env := doCart(t, h, http.MethodPut, "/cart/update/px", "u1", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity required", env.Error)
}

func TestHTTP_UpdateWithoutCart(t *testing.T) {
	h := newTestHandler(t, productX())

	rec, env := doCart(t, h, http.MethodPut, "/cart/update/px", "u1", map[string]any{"quantity": 1})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "cart not found", env.Error)
}

func TestHTTP_UpdateItemNotInCartIsGenericFailure(t *testing.T) {
	// the upstream API never mapped item-not-in-cart to 404; it surfaces
	// as a plain server error, distinct from "cart not found"
	h := newTestHandler(t, productX(), CatalogProduct{ID: "py", PriceCents: 100, Stock: 9})

	rec, _ := doCart(t, h, http.MethodPost, "/cart/add", "u1", map[string]any{"product_id": "px"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doCart(t, h, http.MethodPut, "/cart/update/py", "u1", map[string]any{"quantity": 1})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server error", env.Error)
}

func TestHTTP_RemoveWithoutCart(t *testing.T) {
	h := newTestHandler(t)

	rec, env := doCart(t, h, http.MethodDelete, "/cart/remove/px", "u1", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "cart not found", env.Error)
}

func TestHTTP_ClearFlow(t *testing.T) {
	h := newTestHandler(t, productX())

	rec, _ := doCart(t, h, http.MethodPost, "/cart/add", "u1", map[string]any{"product_id": "px", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doCart(t, h, http.MethodDelete, "/cart/clear", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ec := decodeCart(t, env)
	assert.Empty(t, ec.Items)
	assert.Equal(t, 0, ec.TotalItems)

	rec, env = doCart(t, h, http.MethodGet, "/cart", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ec = decodeCart(t, env)
	assert.Empty(t, ec.Items)
}

func TestHTTP_CatalogUnavailable(t *testing.T) {
	svc, _ := newTestService()
	svc.Catalog = unavailableCatalog{}
	s := &Server{Svc: svc, Log: zap.NewNop()}
	h := NewHandler(s, HTTPDeps{Log: zap.NewNop(), Service: "cart"})

	rec, env := doCart(t, h, http.MethodPost, "/cart/add", "u1", map[string]any{"product_id": "px"})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "catalog unavailable", env.Error)
}

type unavailableCatalog struct{}

func (unavailableCatalog) Product(ctx context.Context, id string) (CatalogProduct, error) {
	return CatalogProduct{}, ErrCatalogUnavailable
}
