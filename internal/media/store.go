package media

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrImageNotFound = errors.New("image not found")

type Image struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type Store interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (Image, error)
	Open(ctx context.Context, id string) (Image, io.ReadCloser, error)
	Ping(ctx context.Context) error
}
