package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/cache"
	"gorm.io/gorm"
)

// ErrRecordNotFound re-exports gorm's sentinel so repositories need not
// import gorm just to match it.
var ErrRecordNotFound = gorm.ErrRecordNotFound

// Query is a thin fluent wrapper over *gorm.DB.
type Query struct {
	db    *gorm.DB
	cache cache.Store
}

// New starts a query on db. store may be nil, which disables Cache.
func New(db *gorm.DB, store cache.Store) *Query {
	return &Query{db: db, cache: store}
}

func (q *Query) with(db *gorm.DB) *Query {
	return &Query{db: db, cache: q.cache}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return q.with(q.db.WithContext(ctx))
}

func (q *Query) Model(v interface{}) *Query {
	return q.with(q.db.Model(v))
}

func (q *Query) Where(query string, args ...interface{}) *Query {
	return q.with(q.db.Where(query, args...))
}

func (q *Query) Order(value string) *Query {
	return q.with(q.db.Order(value))
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

// Delete removes rows matching the current conditions and reports how many.
func (q *Query) Delete(v interface{}) (int64, error) {
	res := q.db.Delete(v)
	return res.RowsAffected, res.Error
}

// Paginate counts the matching rows, then loads page into dest.
func (q *Query) Paginate(dest interface{}, page, perPage int) (Pagination, error) {
	total, err := q.Count()
	if err != nil {
		return Pagination{}, err
	}

	p := NewPagination(total, page, perPage)
	err = q.db.Offset(p.Offset()).Limit(p.PerPage).Find(dest).Error
	return p, err
}

// Cache serves Get from the cache store under key, filling it on a miss.
func (q *Query) Cache(ctx context.Context, key string, ttl time.Duration, dest interface{}) error {
	if q.cache != nil && q.cache.Get(ctx, key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	if q.cache != nil {
		if err := q.cache.Set(ctx, key, dest, ttl); err != nil {
			return fmt.Errorf("orm: cache fill %s: %w", key, err)
		}
	}
	return nil
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
