package cart

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Svc *Service
	Log *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/cart", s.get)
	r.Post("/cart/add", s.add)
	r.Put("/cart/update/{productID}", s.update)
	r.Delete("/cart/remove/{productID}", s.remove)
	r.Delete("/cart/clear", s.clear)

	return r
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user")
		return
	}

	ec, err := s.Svc.Get(r.Context(), u.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteData(w, r, http.StatusOK, ec)
}

type addReq struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user")
		return
	}

	var req addReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json")
		return
	}
	if req.ProductID == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id required")
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ec, err := s.Svc.Add(r.Context(), u.ID, req.ProductID, qty)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteMessage(w, r, http.StatusOK, "item added to cart", ec)
}

type updateReq struct {
	Quantity *int `json:"quantity"`
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user")
		return
	}

	productID := chi.URLParam(r, "productID")

	var req updateReq
	if err := decodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json")
		return
	}
	if req.Quantity == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "quantity required")
		return
	}

	ec, err := s.Svc.UpdateQuantity(r.Context(), u.ID, productID, *req.Quantity)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteMessage(w, r, http.StatusOK, "cart updated", ec)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user")
		return
	}

	ec, err := s.Svc.Remove(r.Context(), u.ID, chi.URLParam(r, "productID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteMessage(w, r, http.StatusOK, "item removed from cart", ec)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user")
		return
	}

	ec, err := s.Svc.Clear(r.Context(), u.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteMessage(w, r, http.StatusOK, "cart cleared", ec)
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, ErrProductNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "product not found")
	case errors.Is(err, ErrInsufficientStock):
		kit.WriteError(w, r, http.StatusBadRequest, "insufficient stock")
	case errors.Is(err, ErrCartNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "cart not found")
	case errors.Is(err, ErrCatalogUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable")
	default:
		// ErrItemNotFound lands here on purpose: the upstream API surfaced
		// it as a generic failure rather than a 404, and clients rely on
		// the distinction from "cart not found"
		if s.Log != nil {
			s.Log.Error("cart operation failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}
	return nil
}
