package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCartNotFound      = errors.New("cart not found")
)

// ExpandedItem is a cart line joined with current product detail. The
// snapshot unit price and the catalog's live price both appear; they are not
// reconciled.
type ExpandedItem struct {
	ProductID      string          `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPriceCents int64           `json:"unit_price_cents"`
	LineTotalCents int64           `json:"line_total_cents"`
	Product        *CatalogProduct `json:"product"`
}

type ExpandedCart struct {
	UserID          string         `json:"user_id"`
	Items           []ExpandedItem `json:"items"`
	TotalItems      int            `json:"total_items"`
	TotalPriceCents int64          `json:"total_price_cents"`
}

// Service applies exactly one cart mutation per call: validate against the
// catalog, delegate to the aggregate, persist, return the expanded cart.
type Service struct {
	Store   Store
	Cache   Cache
	Catalog CatalogLookup
	Log     *zap.Logger

	sfg singleflight.Group
}

// Get returns the user's cart, creating and persisting an empty one on first
// read so that a cart always exists.
func (s *Service) Get(ctx context.Context, userID string) (*ExpandedCart, error) {
	c, err := s.loadCached(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, c)
}

// Add validates productID against the catalog and merges qty units into the
// cart at the catalog's current price. The stock check compares against the
// requested increment, not the post-merge line total; repeat adds can
// therefore grow a line past available stock. That matches the upstream
// behavior and callers depend on it.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (*ExpandedCart, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock < qty {
		return nil, ErrInsufficientStock
	}

	c, found, err := s.Store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		c = New(userID)
	}

	c.AddItem(productID, qty, p.PriceCents)

	if err := s.Store.Save(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(userID)

	return s.expand(ctx, c)
}

// UpdateQuantity sets the line quantity for productID. Zero removes the line;
// negative quantities are rejected before anything else is checked.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*ExpandedCart, error) {
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > p.Stock {
		return nil, ErrInsufficientStock
	}

	c, found, err := s.Store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCartNotFound
	}

	if err := c.UpdateItemQuantity(productID, qty); err != nil {
		return nil, err
	}

	if err := s.Store.Save(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(userID)

	return s.expand(ctx, c)
}

// Remove drops the line for productID. Removal is idempotent: the only way
// this fails is when the user has no cart at all.
func (s *Service) Remove(ctx context.Context, userID, productID string) (*ExpandedCart, error) {
	c, found, err := s.Store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCartNotFound
	}

	c.RemoveItem(productID)

	if err := s.Store.Save(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(userID)

	return s.expand(ctx, c)
}

// Clear empties the cart but keeps the record; a later Get sees an empty
// cart, not a missing one.
func (s *Service) Clear(ctx context.Context, userID string) (*ExpandedCart, error) {
	c, found, err := s.Store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCartNotFound
	}

	c.Clear()

	if err := s.Store.Save(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(userID)

	return s.expand(ctx, c)
}

// loadCached reads through the cache, collapsing concurrent misses for the
// same user into one store round trip.
func (s *Service) loadCached(ctx context.Context, userID string) (*Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (any, error) {
		if s.Cache != nil {
			c, err := s.Cache.Get(ctx, userID)
			if err == nil {
				return c, nil
			}
			if !errors.Is(err, ErrCacheMiss) && s.Log != nil {
				s.Log.Warn("cart cache get failed", zap.Error(err), zap.String("user_id", userID))
			}
		}

		c, found, err := s.Store.Load(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !found {
			c = New(userID)
			if err := s.Store.Save(ctx, c); err != nil {
				return nil, err
			}
		}

		if s.Cache != nil {
			if err := s.Cache.Set(ctx, userID, c); err != nil && s.Log != nil {
				s.Log.Warn("cart cache set failed", zap.Error(err), zap.String("user_id", userID))
			}
		}

		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Cart), nil
}

func (s *Service) invalidate(userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(context.Background(), userID); err != nil && s.Log != nil {
		s.Log.Warn("cart cache invalidate failed", zap.Error(err), zap.String("user_id", userID))
	}
}

// expand joins each line with full product detail. A product that has since
// vanished from the catalog keeps its snapshot fields with a null product.
func (s *Service) expand(ctx context.Context, c *Cart) (*ExpandedCart, error) {
	items := make([]ExpandedItem, 0, len(c.Items))

	for _, it := range c.Items {
		ei := ExpandedItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: int64(it.Quantity) * it.UnitPriceCents,
		}

		p, err := s.Catalog.Product(ctx, it.ProductID)
		switch {
		case err == nil:
			ei.Product = &p
		case errors.Is(err, ErrProductNotFound):
		default:
			return nil, err
		}

		items = append(items, ei)
	}

	return &ExpandedCart{
		UserID:          c.UserID,
		Items:           items,
		TotalItems:      c.TotalItems,
		TotalPriceCents: c.TotalPriceCents,
	}, nil
}
