package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)

	r.Group(func(ar chi.Router) {
		ar.Use(RequireAdmin)
		ar.Post("/products", s.create)
		ar.Put("/products/{id}/stock", s.updateStock)
	})

	return r
}

// RequireAdmin trusts the role header the gateway injects after verifying
// the JWT.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User-Role") != "admin" {
			kit.WriteError(w, r, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListSortedByID(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("list products failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error")
		return
	}
	kit.WriteData(w, r, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("get product failed", zap.Error(err), zap.String("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error")
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found")
		return
	}
	kit.WriteData(w, r, http.StatusOK, p)
}

type createReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	ImageID     string `json:"image_id"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req createReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "title required")
		return
	}
	if req.PriceCents < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "price must be non-negative")
		return
	}
	if req.Stock < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "stock must be non-negative")
		return
	}

	p := Product{
		ID:          "p_" + uuid.NewString(),
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		ImageID:     req.ImageID,
	}

	if err := s.Store.Create(r.Context(), p); err != nil {
		if errors.Is(err, ErrProductExists) {
			kit.WriteError(w, r, http.StatusConflict, "product already exists")
			return
		}
		if s.Log != nil {
			s.Log.Error("create product failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error")
		return
	}

	kit.WriteData(w, r, http.StatusCreated, p)
}

type stockReq struct {
	Stock *int `json:"stock"`
}

func (s *Server) updateStock(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")

	var req stockReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json")
		return
	}
	if req.Stock == nil || *req.Stock < 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "stock must be a non-negative number")
		return
	}

	ok, err := s.Store.UpdateStock(r.Context(), id, *req.Stock)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("update stock failed", zap.Error(err), zap.String("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error")
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found")
		return
	}

	kit.WriteMessage(w, r, http.StatusOK, "stock updated", map[string]any{"id": id, "stock": *req.Stock})
}
