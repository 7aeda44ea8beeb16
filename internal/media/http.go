package media

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const maxUploadBytes = 5 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type Server struct {
	Store Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/images/{id}", s.serve)
	r.With(requireUser).Post("/images", s.upload)

	return r
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User-Id") == "" {
			kit.WriteError(w, r, http.StatusUnauthorized, "no user")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedTypes[contentType] {
		kit.WriteError(w, r, http.StatusBadRequest, "unsupported image type")
		return
	}

	img, err := s.Store.Save(r.Context(), header.Filename, contentType, file)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("save image failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error")
		return
	}

	kit.WriteData(w, r, http.StatusCreated, img)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	img, rc, err := s.Store.Open(r.Context(), id)
	if errors.Is(err, ErrImageNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("open image failed", zap.Error(err), zap.String("id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error")
		return
	}
	defer rc.Close()

	if img.ContentType != "" {
		w.Header().Set("Content-Type", img.ContentType)
	}
	if img.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(img.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
