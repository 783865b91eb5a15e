package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoProducts struct {
	col *mongo.Collection
}

func (r *MongoProducts) Create(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := r.col.InsertOne(ctx, p)
	return wrap("products.create", err)
}

func (r *MongoProducts) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return wrap("products.update", err)
	}
	if res.MatchedCount == 0 {
		return wrap("products.update", mongo.ErrNoDocuments)
	}
	return nil
}

func (r *MongoProducts) FindByID(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, wrap("products.find", err)
}

func (r *MongoProducts) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, wrap("products.find_many", err)
	}

	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrap("products.find_many", err)
	}
	return out, nil
}

func (r *MongoProducts) Page(ctx context.Context, filter ProductFilter, page, perPage int) ([]models.Product, orm.Pagination, error) {
	q := bson.M{}
	if filter.UserID != "" {
		q["userId"] = filter.UserID
	}

	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, orm.Pagination{}, wrap("products.count", err)
	}

	p := orm.NewPagination(total, page, perPage)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.PerPage))

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, p, wrap("products.page", err)
	}

	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, p, wrap("products.page", err)
	}
	return out, p, nil
}

func (r *MongoProducts) DeleteOwned(ctx context.Context, id, userID string) (models.Product, error) {
	var p models.Product
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id, "userId": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return p, r.missingOrForeign(ctx, id)
	}
	return p, wrap("products.delete", err)
}

func (r *MongoProducts) missingOrForeign(ctx context.Context, id string) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return wrap("products.delete", err)
	}
	if n > 0 {
		return apperr.ErrForbidden
	}
	return wrap("products.delete", mongo.ErrNoDocuments)
}
