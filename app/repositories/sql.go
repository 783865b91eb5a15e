package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

// NewSQLSet builds the GORM-backed repositories on db. store backs cached
// reads and may be nil.
func NewSQLSet(db *gorm.DB, store cache.Store) Set {
	return Set{
		Products: &SQLProducts{db: db, store: store},
		Users:    &SQLUsers{db: db},
		Orders:   &SQLOrders{db: db},
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	}
}

func query(ctx context.Context, db *gorm.DB, store cache.Store) *orm.Query {
	return orm.New(db, store).WithContext(ctx)
}
