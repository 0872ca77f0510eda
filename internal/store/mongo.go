package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/grocify/backend/internal/models"
)

// MongoStore handles inventory item CRUD in MongoDB. Every read and delete
// filters on the owning username, so one user can never see or remove
// another user's items.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("items")}
}

func (s *MongoStore) Insert(ctx context.Context, item *models.Item) (string, error) {
	item.CreatedAt = time.Now()
	res, err := s.col.InsertOne(ctx, item)
	if err != nil {
		return "", fmt.Errorf("mongo insert: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	item.ID = oid
	return oid.Hex(), nil
}

func (s *MongoStore) ListByOwner(ctx context.Context, username string) ([]models.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "expiry_date", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.Item
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoStore) GetOwned(ctx context.Context, id, username string) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var item models.Item
	err = s.col.FindOne(ctx, bson.M{"_id": oid, "username": username}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *MongoStore) DeleteOwned(ctx context.Context, id, username string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid, "username": username})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
