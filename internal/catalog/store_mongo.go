package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const pingTimeout = 1 * time.Second

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("products")}
}

func (s *MongoStore) Get(ctx context.Context, id string) (Product, bool, error) {
	var p Product
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, fmt.Errorf("get product: %w", err)
	}
	return p, true, nil
}

func (s *MongoStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]Product, 0, 16)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Create(ctx context.Context, p Product) error {
	_, err := s.coll.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrProductExists
	}
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *MongoStore) UpdateStock(ctx context.Context, id string, stock int) (bool, error) {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"stock": stock}})
	if err != nil {
		return false, fmt.Errorf("update stock: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}
