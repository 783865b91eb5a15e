package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUsers struct {
	col *mongo.Collection
}

func (r *MongoUsers) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Cart.Items == nil {
		u.Cart.Clear()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := r.col.InsertOne(ctx, u)
	return wrap("users.create", err)
}

func (r *MongoUsers) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return wrap("users.update", err)
	}
	if res.MatchedCount == 0 {
		return wrap("users.update", mongo.ErrNoDocuments)
	}
	return nil
}

func (r *MongoUsers) FindByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, wrap("users.find", err)
}

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&u)
	return u, wrap("users.find_by_email", err)
}

func (r *MongoUsers) FindByResetToken(ctx context.Context, token string) (models.User, error) {
	var u models.User
	if token == "" {
		return u, wrap("users.find_by_reset_token", mongo.ErrNoDocuments)
	}
	err := r.col.FindOne(ctx, bson.M{"resetToken": token}).Decode(&u)
	return u, wrap("users.find_by_reset_token", err)
}

func (r *MongoUsers) SaveCart(ctx context.Context, userID string, cart models.Cart) error {
	if cart.Items == nil {
		cart.Clear()
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"cart": cart, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return wrap("users.save_cart", err)
	}
	if res.MatchedCount == 0 {
		return wrap("users.save_cart", mongo.ErrNoDocuments)
	}
	return nil
}
