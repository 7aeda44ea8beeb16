package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Storefront/internal/auth"
	"Storefront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	AuthURL    string
	CatalogURL string
	CartURL    string
	MediaURL   string
	JWTSecret  string
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

var readyClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	},
}

func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	authProxy, err := NewReverseProxy(deps.AuthURL, httpDeps.Log)
	if err != nil {
		return nil, err
	}
	catalogProxy, err := NewReverseProxy(deps.CatalogURL, httpDeps.Log)
	if err != nil {
		return nil, err
	}
	cartProxy, err := NewReverseProxy(deps.CartURL, httpDeps.Log)
	if err != nil {
		return nil, err
	}
	mediaProxy, err := NewReverseProxy(deps.MediaURL, httpDeps.Log)
	if err != nil {
		return nil, err
	}

	jwt := auth.NewTokenMaker(deps.JWTSecret)

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Handle("/auth", authProxy)
	r.Handle("/auth/*", authProxy)

	// product reads are public; catalog admin routes check the injected role
	r.Method(http.MethodGet, "/products", catalogProxy)
	r.Method(http.MethodGet, "/products/{id}", catalogProxy)

	r.Method(http.MethodGet, "/images/{id}", mediaProxy)

	r.Group(func(pr chi.Router) {
		pr.Use(AuthJWT(jwt))
		pr.Use(InjectHeaders)

		pr.Handle("/cart", cartProxy)
		pr.Handle("/cart/*", cartProxy)

		pr.Method(http.MethodPost, "/products", catalogProxy)
		pr.Method(http.MethodPut, "/products/{id}/stock", catalogProxy)

		pr.Method(http.MethodPost, "/images", mediaProxy)
	})

	return r, nil
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	probes := []struct {
		name string
		url  string
	}{
		{"auth", deps.AuthURL + "/readyz"},
		{"catalog", deps.CatalogURL + "/readyz"},
		{"cart", deps.CartURL + "/readyz"},
		{"media", deps.MediaURL + "/readyz"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, p := range probes {
			if err := checkReady(ctx, p.url); err != nil {
				if log != nil {
					log.Warn("readyz failed", zap.String("upstream", p.name), zap.Error(err))
				}
				kit.WriteError(w, r, http.StatusServiceUnavailable, p.name+" not ready")
				return
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, url string) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := readyClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}

	return nil
}
