package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"gorm.io/gorm"
)

type SQLOrders struct {
	db *gorm.DB
}

func (r *SQLOrders) CreateAndClearCart(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return saveCart(tx, order.User.UserID, models.Cart{})
	})
	return wrap("orders.create", err)
}

func (r *SQLOrders) FindByID(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := query(ctx, r.db, nil).Model(&models.Order{}).Where("id = ?", id).First(&o)
	return o, wrap("orders.find", err)
}

func (r *SQLOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	out := []models.Order{}
	err := query(ctx, r.db, nil).Model(&models.Order{}).
		Where("user_user_id = ?", userID).
		Order("created_at desc").
		Get(&out)
	return out, wrap("orders.list", err)
}
