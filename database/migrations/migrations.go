// Package migrations holds the SQL schema migrations. Each file registers
// itself from init(); cmd/storefront imports this package for the side effect.
package migrations

import (
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"gorm.io/gorm"
)

// AutoMigrate runs every pending migration against db. Used by the sqlite
// repository tests and by `serve` on a fresh SQL database.
func AutoMigrate(db *gorm.DB) error {
	return migration.New(db, nil).Run()
}
