package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/storefront/app/apperr"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// wrap maps driver errors onto the shared taxonomy.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments), orm.IsNotFound(err):
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	case isDuplicate(err):
		return fmt.Errorf("%s: %w", op, apperr.ErrConflict)
	default:
		return fmt.Errorf("%s: %v: %w", op, err, apperr.ErrStorage)
	}
}

func isDuplicate(err error) bool {
	if mongo.IsDuplicateKeyError(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
