package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCatalog struct {
	mu       sync.Mutex
	products map[string]CatalogProduct
	calls    int
}

func (c *stubCatalog) Product(ctx context.Context, id string) (CatalogProduct, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	p, ok := c.products[id]
	if !ok {
		return CatalogProduct{}, ErrProductNotFound
	}
	return p, nil
}

func newTestService(products ...CatalogProduct) (*Service, *stubCatalog) {
	cat := &stubCatalog{products: map[string]CatalogProduct{}}
	for _, p := range products {
		cat.products[p.ID] = p
	}

	svc := &Service{
		Store:   NewMemStore(),
		Cache:   NewMemCache(),
		Catalog: cat,
		Log:     zap.NewNop(),
	}
	return svc, cat
}

func productX() CatalogProduct {
	return CatalogProduct{ID: "px", Title: "Widget", PriceCents: 999, Stock: 5}
}

func TestGet_CreatesEmptyCartLazily(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	ec, err := svc.Get(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", ec.UserID)
	assert.Empty(t, ec.Items)
	assert.Equal(t, 0, ec.TotalItems)
	assert.Equal(t, int64(0), ec.TotalPriceCents)

	// the read persisted a record: the cart now exists in the store
	_, found, err := svc.Store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestAdd_EmptyCart(t *testing.T) {
	// scenario: stock=5, price=9.99, add 2
	svc, _ := newTestService(productX())
	ctx := context.Background()

	ec, err := svc.Add(ctx, "u1", "px", 2)
	require.NoError(t, err)

	require.Len(t, ec.Items, 1)
	assert.Equal(t, "px", ec.Items[0].ProductID)
	assert.Equal(t, 2, ec.Items[0].Quantity)
	assert.Equal(t, int64(999), ec.Items[0].UnitPriceCents)
	assert.Equal(t, int64(1998), ec.Items[0].LineTotalCents)
	assert.Equal(t, 2, ec.TotalItems)
	assert.Equal(t, int64(1998), ec.TotalPriceCents)

	require.NotNil(t, ec.Items[0].Product)
	assert.Equal(t, "Widget", ec.Items[0].Product.Title)
}

func TestAdd_MergeSkipsPostMergeStockCheck(t *testing.T) {
	// the stock check compares the increment only: 4 in cart, stock 10,
	// adding 3 passes even though a merged total could not be re-bought
	svc, _ := newTestService(CatalogProduct{ID: "px", PriceCents: 999, Stock: 10})
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "px", 4)
	require.NoError(t, err)

	ec, err := svc.Add(ctx, "u1", "px", 3)
	require.NoError(t, err)

	require.Len(t, ec.Items, 1)
	assert.Equal(t, 7, ec.Items[0].Quantity)
	assert.Equal(t, 7, ec.TotalItems)
}

func TestAdd_InsufficientStock(t *testing.T) {
	svc, _ := newTestService(CatalogProduct{ID: "py", PriceCents: 500, Stock: 2})
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "py", 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// cart unchanged: nothing was ever persisted
	_, found, lerr := svc.Store.Load(ctx, "u1")
	require.NoError(t, lerr)
	assert.False(t, found)
}

func TestAdd_ProductNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Add(context.Background(), "u1", "ghost", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newTestService(productX())

	_, err := svc.Add(context.Background(), "u1", "px", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Add(context.Background(), "u1", "px", -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateQuantity_ZeroRemovesItem(t *testing.T) {
	svc, _ := newTestService(productX())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "px", 3)
	require.NoError(t, err)

	ec, err := svc.UpdateQuantity(ctx, "u1", "px", 0)
	require.NoError(t, err)

	assert.Empty(t, ec.Items)
	assert.Equal(t, 0, ec.TotalItems)
}

func TestUpdateQuantity_NegativeIsValidationError(t *testing.T) {
	svc, _ := newTestService(productX())

	_, err := svc.UpdateQuantity(context.Background(), "u1", "px", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateQuantity_ChecksStock(t *testing.T) {
	svc, _ := newTestService(productX())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "px", 1)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, "u1", "px", 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestUpdateQuantity_NoCart(t *testing.T) {
	svc, _ := newTestService(productX())

	_, err := svc.UpdateQuantity(context.Background(), "u1", "px", 1)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestUpdateQuantity_ItemNotInCart(t *testing.T) {
	svc, _ := newTestService(productX(), CatalogProduct{ID: "py", PriceCents: 100, Stock: 9})
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "px", 1)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, "u1", "py", 2)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemove_NoCart(t *testing.T) {
	svc, _ := newTestService(productX())

	_, err := svc.Remove(context.Background(), "u1", "px")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRemove_AbsentItemSucceeds(t *testing.T) {
	svc, _ := newTestService(productX())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "px", 2)
	require.NoError(t, err)

	ec, err := svc.Remove(ctx, "u1", "ghost")
	require.NoError(t, err)
	assert.Equal(t, 2, ec.TotalItems)
}

func TestClear_KeepsCartRecord(t *testing.T) {
	svc, _ := newTestService(productX())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "px", 2)
	require.NoError(t, err)

	ec, err := svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ec.Items)
	assert.Equal(t, 0, ec.TotalItems)
	assert.Equal(t, int64(0), ec.TotalPriceCents)

	// the record survives: a later read sees an empty cart, not a miss
	_, found, err := svc.Store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)

	ec, err = svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ec.Items)
}

func TestClear_NoCart(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Clear(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestExpand_VanishedProductKeepsSnapshot(t *testing.T) {
	svc, cat := newTestService(productX())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "px", 2)
	require.NoError(t, err)

	delete(cat.products, "px")

	ec, err := svc.Get(ctx, "u1")
	require.NoError(t, err)

	require.Len(t, ec.Items, 1)
	assert.Nil(t, ec.Items[0].Product)
	assert.Equal(t, int64(999), ec.Items[0].UnitPriceCents)
	assert.Equal(t, 2, ec.TotalItems)
}

func TestGet_PopulatesCache(t *testing.T) {
	svc, _ := newTestService(productX())
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1")
	require.NoError(t, err)

	cached, err := svc.Cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", cached.UserID)
}

func TestMutationInvalidatesCache(t *testing.T) {
	svc, _ := newTestService(productX())
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "u1", "px", 1)
	require.NoError(t, err)

	_, err = svc.Cache.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestService_NilCache(t *testing.T) {
	svc, _ := newTestService(productX())
	svc.Cache = nil
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1")
	require.NoError(t, err)

	ec, err := svc.Add(ctx, "u1", "px", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ec.TotalItems)
}

func TestSnapshotPriceSurvivesCatalogPriceChange(t *testing.T) {
	svc, cat := newTestService(productX())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "px", 2)
	require.NoError(t, err)

	cat.mu.Lock()
	cat.products["px"] = CatalogProduct{ID: "px", Title: "Widget", PriceCents: 1299, Stock: 5}
	cat.mu.Unlock()

	ec, err := svc.Get(ctx, "u1")
	require.NoError(t, err)

	// snapshot and live price coexist, unreconciled
	assert.Equal(t, int64(999), ec.Items[0].UnitPriceCents)
	require.NotNil(t, ec.Items[0].Product)
	assert.Equal(t, int64(1299), ec.Items[0].Product.PriceCents)
	assert.Equal(t, int64(1998), ec.TotalPriceCents)
}
