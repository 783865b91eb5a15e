package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrders struct {
	db *mongo.Database
}

func (r *MongoOrders) CreateAndClearCart(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	sess, err := r.db.Client().StartSession()
	if err != nil {
		return wrap("orders.create", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.db.Collection(ordersCollection).InsertOne(sc, order); err != nil {
			return nil, err
		}

		res, err := r.db.Collection(usersCollection).UpdateOne(sc,
			bson.M{"_id": order.User.UserID},
			bson.M{"$set": bson.M{"cart.items": bson.A{}, "updatedAt": time.Now().UTC()}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, mongo.ErrNoDocuments
		}
		return nil, nil
	})
	return wrap("orders.create", err)
}

func (r *MongoOrders) FindByID(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := r.db.Collection(ordersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	return o, wrap("orders.find", err)
}

func (r *MongoOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.db.Collection(ordersCollection).Find(ctx, bson.M{"user.userId": userID}, opts)
	if err != nil {
		return nil, wrap("orders.list", err)
	}

	out := []models.Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrap("orders.list", err)
	}
	return out, nil
}
