// Package repositories persists products, users and orders. Two backends
// implement the same interfaces: MongoDB (the default document store) and
// GORM for SQL databases.
package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// ProductsPerPage is the fixed catalogue page size.
const ProductsPerPage = 9

// ProductFilter narrows a product listing. Zero value matches everything.
type ProductFilter struct {
	UserID string
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (models.Product, error)
	// FindByIDs returns the products that still exist, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Page(ctx context.Context, filter ProductFilter, page, perPage int) ([]models.Product, orm.Pagination, error)
	// DeleteOwned removes id only when it belongs to userID and returns the
	// removed record.
	DeleteOwned(ctx context.Context, id, userID string) (models.Product, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByResetToken(ctx context.Context, token string) (models.User, error)
	// SaveCart replaces the whole embedded cart. Concurrent writers are
	// last-write-wins.
	SaveCart(ctx context.Context, userID string, cart models.Cart) error
}

type OrderRepository interface {
	// CreateAndClearCart inserts order and empties the purchaser's cart in
	// one transaction.
	CreateAndClearCart(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (models.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}

// Set groups the repositories of one backend.
type Set struct {
	Products ProductRepository
	Users    UserRepository
	Orders   OrderRepository
	// Ping reports backend health.
	Ping func(ctx context.Context) error
}
