package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CatalogProduct is the catalog's answer for one product: current price and
// stock, the cart's source of truth for both.
type CatalogProduct struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	ImageID     string `json:"image_id,omitempty"`
}

// CatalogLookup answers "does this product exist, at what price, with how
// much stock". Implementations return ErrProductNotFound for unknown ids.
type CatalogLookup interface {
	Product(ctx context.Context, id string) (CatalogProduct, error)
}

var ErrCatalogUnavailable = errors.New("catalog unavailable")

type CatalogClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[CatalogProduct]
}

func NewCatalogClient(baseURL string) *CatalogClient {
	baseURL = strings.TrimRight(baseURL, "/")

	st := gobreaker.Settings{
		Name:    "catalog",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a missing product is a valid answer, not a catalog failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrProductNotFound)
		},
	}

	return &CatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[CatalogProduct](st),
	}
}

func (c *CatalogClient) Product(ctx context.Context, id string) (CatalogProduct, error) {
	p, err := c.breaker.Execute(func() (CatalogProduct, error) {
		return c.fetch(ctx, id)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return CatalogProduct{}, ErrCatalogUnavailable
	}
	return p, err
}

func (c *CatalogClient) fetch(ctx context.Context, id string) (CatalogProduct, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products/"+id, nil)
	if err != nil {
		return CatalogProduct{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return CatalogProduct{}, fmt.Errorf("catalog request: %w", ErrCatalogUnavailable)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return CatalogProduct{}, ErrProductNotFound
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return CatalogProduct{}, fmt.Errorf("catalog status=%d: %w", resp.StatusCode, ErrCatalogUnavailable)
	}

	var env struct {
		Success bool           `json:"success"`
		Data    CatalogProduct `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return CatalogProduct{}, err
	}
	return env.Data, nil
}
