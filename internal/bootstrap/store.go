package bootstrap

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

// Store is the opened persistence backend: MongoDB or one GORM dialect.
type Store struct {
	Driver string
	Mongo  *mongo.Database
	SQL    *gorm.DB
	Repos  repositories.Set
}

// OpenStore connects the backend selected by DB_DRIVER. store backs cached
// SQL reads and may be nil.
func OpenStore(ctx context.Context, store cache.Store) (*Store, error) {
	driver := config.DatabaseDriver()

	if driver == "mongo" {
		db, err := database.OpenMongo(ctx, config.MongoURI(), config.MongoDatabase())
		if err != nil {
			return nil, err
		}
		if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
			_ = database.CloseMongo(ctx, db)
			return nil, err
		}
		return &Store{Driver: driver, Mongo: db, Repos: repositories.NewMongoSet(db)}, nil
	}

	db, err := database.Open(driver, config.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	return &Store{Driver: driver, SQL: db, Repos: repositories.NewSQLSet(db, store)}, nil
}

// IsSQL reports whether a GORM dialect is in use.
func (s *Store) IsSQL() bool { return s.SQL != nil }

// Migrate applies pending SQL migrations. MongoDB needs none.
func (s *Store) Migrate() error {
	if !s.IsSQL() {
		return nil
	}
	if err := migrations.AutoMigrate(s.SQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// FailedJobs is where exhausted queue jobs are recorded.
func (s *Store) FailedJobs() queue.FailedStore {
	if s.IsSQL() {
		return queue.NewGormFailedStore(s.SQL)
	}
	return queue.NewMongoFailedStore(s.Mongo)
}

func (s *Store) Close(ctx context.Context) error {
	if s.IsSQL() {
		return database.Close(s.SQL)
	}
	return database.CloseMongo(ctx, s.Mongo)
}
