package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const pingTimeout = 1 * time.Second

type GridFSStore struct {
	db     *mongo.Database
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("images"))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{db: db, bucket: bucket}, nil
}

type fileMetadata struct {
	ContentType string `bson:"content_type"`
}

func (s *GridFSStore) Save(ctx context.Context, name, contentType string, r io.Reader) (Image, error) {
	id := "img_" + uuid.NewString()

	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	size, err := s.bucket.UploadFromStreamWithID(id, name, r, opts)
	if err != nil {
		return Image{}, fmt.Errorf("upload image: %w", err)
	}

	return Image{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

func (s *GridFSStore) Open(ctx context.Context, id string) (Image, io.ReadCloser, error) {
	ds, err := s.bucket.OpenDownloadStream(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return Image{}, nil, ErrImageNotFound
	}
	if err != nil {
		return Image{}, nil, fmt.Errorf("open image: %w", err)
	}

	f := ds.GetFile()

	var md fileMetadata
	if f.Metadata != nil {
		_ = bson.Unmarshal(f.Metadata, &md)
	}

	img := Image{
		ID:          id,
		Name:        f.Name,
		ContentType: md.ContentType,
		Size:        f.Length,
		UploadedAt:  f.UploadDate,
	}
	return img, ds, nil
}

func (s *GridFSStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.Client().Ping(ctx, readpref.Primary())
}
