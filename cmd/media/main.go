package main

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/media"
	"Storefront/pkg/kit"
)

func main() {
	service := "media"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8084")

	var store media.Store
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		db, err := kit.ConnectMongo(ctx, uri, getenv("MONGO_DB", "storefront"))
		cancel()
		if err != nil {
			log.Fatal("connect mongo failed", zap.Error(err))
		}

		store, err = media.NewGridFSStore(db)
		if err != nil {
			log.Fatal("open gridfs failed", zap.Error(err))
		}
	} else {
		log.Warn("MONGO_URI not set, using in-memory image store")
		store = media.NewMemStore()
	}

	s := &media.Server{Store: store, Log: log}

	h := media.NewHandler(s, media.HTTPDeps{
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
