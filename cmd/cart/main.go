package main

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Storefront/internal/cart"
	"Storefront/pkg/kit"
)

func main() {
	service := "cart"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8083")
	catalogURL := getenv("CATALOG_URL", "http://catalog:8082")

	var store cart.Store
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		db, err := kit.ConnectMongo(ctx, uri, getenv("MONGO_DB", "storefront"))
		if err != nil {
			cancel()
			log.Fatal("connect mongo failed", zap.Error(err))
		}

		ms := cart.NewMongoStore(db)
		if err := ms.EnsureIndexes(ctx); err != nil {
			cancel()
			log.Fatal("ensure cart indexes failed", zap.Error(err))
		}
		cancel()
		store = ms
	} else {
		log.Warn("MONGO_URI not set, using in-memory cart store")
		store = cart.NewMemStore()
	}

	var cache cart.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache = cart.NewRedisCache(redis.NewClient(&redis.Options{Addr: addr}))
	} else {
		log.Warn("REDIS_ADDR not set, cart cache disabled")
	}

	svc := &cart.Service{
		Store:   store,
		Cache:   cache,
		Catalog: cart.NewCatalogClient(catalogURL),
		Log:     log,
	}

	s := &cart.Server{Svc: svc, Log: log}

	h := cart.NewHandler(s, cart.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
