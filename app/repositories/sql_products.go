package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

type SQLProducts struct {
	db    *gorm.DB
	store cache.Store
}

func (r *SQLProducts) Create(ctx context.Context, p *models.Product) error {
	return wrap("products.create", query(ctx, r.db, r.store).Create(p))
}

func (r *SQLProducts) Update(ctx context.Context, p *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).
		Select("title", "price", "description", "image_path", "user_id", "updated_at").
		Updates(p)
	if res.Error != nil {
		return wrap("products.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("products.update", orm.ErrRecordNotFound)
	}
	r.forget(ctx, p.ID)
	return nil
}

const productCacheTTL = 5 * time.Minute

func productKey(id string) string { return "product:" + id }

// FindByID reads through the cache store when one is configured.
func (r *SQLProducts) FindByID(ctx context.Context, id string) (models.Product, error) {
	q := query(ctx, r.db, r.store).Model(&models.Product{}).Where("id = ?", id)

	if r.store == nil {
		var p models.Product
		return p, wrap("products.find", q.First(&p))
	}

	var rows []models.Product
	if err := q.Cache(ctx, productKey(id), productCacheTTL, &rows); err != nil {
		return models.Product{}, wrap("products.find", err)
	}
	if len(rows) == 0 {
		_ = r.store.Del(ctx, productKey(id))
		return models.Product{}, wrap("products.find", orm.ErrRecordNotFound)
	}
	return rows[0], nil
}

func (r *SQLProducts) forget(ctx context.Context, id string) {
	if r.store != nil {
		_ = r.store.Del(ctx, productKey(id))
	}
}

func (r *SQLProducts) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	out := []models.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	err := query(ctx, r.db, r.store).Model(&models.Product{}).Where("id IN ?", ids).Get(&out)
	return out, wrap("products.find_many", err)
}

func (r *SQLProducts) Page(ctx context.Context, filter ProductFilter, page, perPage int) ([]models.Product, orm.Pagination, error) {
	q := query(ctx, r.db, r.store).Model(&models.Product{}).Order("created_at asc, id asc")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}

	out := []models.Product{}
	p, err := q.Paginate(&out, page, perPage)
	if err != nil {
		return nil, p, wrap("products.page", err)
	}
	return out, p, nil
}

func (r *SQLProducts) DeleteOwned(ctx context.Context, id, userID string) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		if p.UserID != userID {
			return apperr.ErrForbidden
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
	if errors.Is(err, apperr.ErrForbidden) {
		return models.Product{}, err
	}
	if err == nil {
		r.forget(ctx, id)
	}
	return p, wrap("products.delete", err)
}
