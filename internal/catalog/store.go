package catalog

import (
	"context"
	"errors"
)

var ErrProductExists = errors.New("product already exists")

type Product struct {
	ID          string `bson:"_id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	PriceCents  int64  `bson:"price_cents" json:"price_cents"`
	Stock       int    `bson:"stock" json:"stock"`
	ImageID     string `bson:"image_id,omitempty" json:"image_id,omitempty"`
}

type Store interface {
	Get(ctx context.Context, id string) (Product, bool, error)
	ListSortedByID(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, p Product) error
	UpdateStock(ctx context.Context, id string, stock int) (bool, error)
	Ping(ctx context.Context) error
}
