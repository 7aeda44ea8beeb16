package cart

import (
	"errors"
	"time"
)

// MaxItemQuantity caps how many units of a single product a cart may hold.
// Adds beyond the cap are clamped, never rejected.
const MaxItemQuantity = 100

var ErrItemNotFound = errors.New("item not in cart")

type Item struct {
	ProductID      string    `bson:"product_id" json:"product_id"`
	Quantity       int       `bson:"quantity" json:"quantity"`
	UnitPriceCents int64     `bson:"unit_price_cents" json:"unit_price_cents"`
	AddedAt        time.Time `bson:"added_at" json:"added_at"`
}

// Cart is the per-user item collection. TotalItems and TotalPriceCents are
// derived: every mutation goes through recompute, nothing sets them directly.
type Cart struct {
	UserID          string    `bson:"user_id" json:"user_id"`
	Items           []Item    `bson:"items" json:"items"`
	TotalItems      int       `bson:"total_items" json:"total_items"`
	TotalPriceCents int64     `bson:"total_price_cents" json:"total_price_cents"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`

	// position of each product in Items; rebuilt on recompute, nil after
	// decode from storage
	idx map[string]int `bson:"-" json:"-"`
}

func New(userID string) *Cart {
	return &Cart{
		UserID: userID,
		Items:  []Item{},
	}
}

// AddItem merges qty into an existing line for productID, or appends a new
// line. The line quantity is clamped to MaxItemQuantity; excess is dropped
// silently. The unit price snapshot is refreshed on merge.
func (c *Cart) AddItem(productID string, qty int, unitPriceCents int64) {
	now := time.Now().UTC()

	if i, ok := c.find(productID); ok {
		c.Items[i].Quantity = clampQuantity(c.Items[i].Quantity + qty)
		c.Items[i].UnitPriceCents = unitPriceCents
		c.Items[i].AddedAt = now
	} else {
		c.Items = append(c.Items, Item{
			ProductID:      productID,
			Quantity:       clampQuantity(qty),
			UnitPriceCents: unitPriceCents,
			AddedAt:        now,
		})
	}

	c.recompute()
}

// UpdateItemQuantity sets the line quantity for productID, clamped to
// MaxItemQuantity. A quantity of zero or less removes the line, and removal
// is idempotent here; updating a line that does not exist is an error.
func (c *Cart) UpdateItemQuantity(productID string, qty int) error {
	if qty <= 0 {
		c.RemoveItem(productID)
		return nil
	}

	i, ok := c.find(productID)
	if !ok {
		return ErrItemNotFound
	}

	c.Items[i].Quantity = clampQuantity(qty)
	c.recompute()
	return nil
}

// RemoveItem drops the line for productID. Removing an absent line is a no-op.
func (c *Cart) RemoveItem(productID string) {
	i, ok := c.find(productID)
	if !ok {
		return
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.recompute()
}

// Clear empties the cart. The cart record itself survives.
func (c *Cart) Clear() {
	c.Items = []Item{}
	c.recompute()
}

// Clone returns a deep copy. Stores and caches hand out clones so callers
// never share the persisted instance.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]Item, len(c.Items))
	copy(cp.Items, c.Items)
	cp.idx = nil
	return &cp
}

func (c *Cart) find(productID string) (int, bool) {
	if c.idx == nil {
		c.reindex()
	}
	i, ok := c.idx[productID]
	return i, ok
}

func (c *Cart) reindex() {
	c.idx = make(map[string]int, len(c.Items))
	for i, it := range c.Items {
		c.idx[it.ProductID] = i
	}
}

func (c *Cart) recompute() {
	var items int
	var cents int64
	for _, it := range c.Items {
		items += it.Quantity
		cents += int64(it.Quantity) * it.UnitPriceCents
	}

	c.TotalItems = items
	c.TotalPriceCents = cents
	c.UpdatedAt = time.Now().UTC()
	c.reindex()
}

func clampQuantity(q int) int {
	if q > MaxItemQuantity {
		return MaxItemQuantity
	}
	if q < 1 {
		return 1
	}
	return q
}
