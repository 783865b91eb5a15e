package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

type SQLUsers struct {
	db *gorm.DB
}

func (r *SQLUsers) Create(ctx context.Context, u *models.User) error {
	if u.Cart.Items == nil {
		u.Cart.Clear()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return wrap("users.create", query(ctx, r.db, nil).Create(u))
}

func (r *SQLUsers) Update(ctx context.Context, u *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).
		Select("name", "email", "password", "role", "cart", "reset_token", "reset_token_expires", "updated_at").
		Updates(u)
	if res.Error != nil {
		return wrap("users.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("users.update", orm.ErrRecordNotFound)
	}
	return nil
}

func (r *SQLUsers) FindByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := query(ctx, r.db, nil).Model(&models.User{}).Where("id = ?", id).First(&u)
	return u, wrap("users.find", err)
}

func (r *SQLUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := query(ctx, r.db, nil).Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u)
	return u, wrap("users.find_by_email", err)
}

func (r *SQLUsers) FindByResetToken(ctx context.Context, token string) (models.User, error) {
	var u models.User
	if token == "" {
		return u, wrap("users.find_by_reset_token", orm.ErrRecordNotFound)
	}
	err := query(ctx, r.db, nil).Model(&models.User{}).Where("reset_token = ?", token).First(&u)
	return u, wrap("users.find_by_reset_token", err)
}

func (r *SQLUsers) SaveCart(ctx context.Context, userID string, cart models.Cart) error {
	return wrap("users.save_cart", saveCart(r.db.WithContext(ctx), userID, cart))
}

func saveCart(tx *gorm.DB, userID string, cart models.Cart) error {
	if cart.Items == nil {
		cart.Clear()
	}
	res := tx.Model(&models.User{}).Where("id = ?", userID).
		Select("cart", "updated_at").
		Updates(&models.User{Cart: cart, UpdatedAt: time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orm.ErrRecordNotFound
	}
	return nil
}
