package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	productsCollection = "products"
	usersCollection    = "users"
	ordersCollection   = "orders"
)

// NewMongoSet builds the MongoDB-backed repositories on db.
func NewMongoSet(db *mongo.Database) Set {
	return Set{
		Products: &MongoProducts{col: db.Collection(productsCollection)},
		Users:    &MongoUsers{col: db.Collection(usersCollection)},
		Orders:   &MongoOrders{db: db},
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	}
}

// EnsureMongoIndexes creates the unique and lookup indexes the repositories
// rely on. Safe to run repeatedly.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	plan := map[string][]mongo.IndexModel{
		productsCollection: {
			{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "resetToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "user.userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for col, idx := range plan {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("indexes %s: %w", col, err)
		}
	}
	return nil
}
