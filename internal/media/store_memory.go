package media

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memImage struct {
	meta Image
	data []byte
}

type MemStore struct {
	mu sync.RWMutex
	m  map[string]memImage
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]memImage{}}
}

func (s *MemStore) Save(ctx context.Context, name, contentType string, r io.Reader) (Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Image{}, err
	}

	img := Image{
		ID:          "img_" + uuid.NewString(),
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.m[img.ID] = memImage{meta: img, data: data}
	s.mu.Unlock()

	return img, nil
}

func (s *MemStore) Open(ctx context.Context, id string) (Image, io.ReadCloser, error) {
	s.mu.RLock()
	mi, ok := s.m[id]
	s.mu.RUnlock()

	if !ok {
		return Image{}, nil, ErrImageNotFound
	}
	return mi.meta, io.NopCloser(bytes.NewReader(mi.data)), nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }
