// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"folio/internal/cache"
	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the persistence contract shared by every entity store.
// Multi-step writes share a transaction when ctx carries one.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uint, preload ...string) (*T, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params query.Params, preload ...string) (query.Sequence[T], error)
}

// Store is the gorm implementation of Repository. Named repositories embed it.
type Store[T any] struct {
	db    *gorm.DB
	name  string
	table string
	spec  query.Spec
	cache *cacheConfig
}

type cacheConfig struct {
	key     func(id uint) string
	ttl     time.Duration
	enabled func() bool
}

// StoreOption configures a Store.
type StoreOption func(*cacheConfig)

// WithCache enables Redis cache-aside on GetByID while enabled reports true.
// Reads inside a transaction always go to the database.
func WithCache(key func(id uint) string, ttl time.Duration, enabled func() bool) StoreOption {
	return func(c *cacheConfig) {
		c.key = key
		c.ttl = ttl
		c.enabled = enabled
	}
}

// NewStore returns a Store for T. name is used in not-found messages and
// table labels query metrics.
func NewStore[T any](db *gorm.DB, name, table string, spec query.Spec, opts ...StoreOption) *Store[T] {
	s := &Store[T]{db: db, name: name, table: table, spec: spec}
	if len(opts) > 0 {
		s.cache = &cacheConfig{}
		for _, opt := range opts {
			opt(s.cache)
		}
	}
	return s
}

// Conn returns the connection for ctx, joining its transaction if present.
func (s *Store[T]) Conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, s.db)
}

func (s *Store[T]) notFound(id uint) error {
	return models.NewNotFoundError(s.name, id)
}

// Create inserts entity without touching its associations.
func (s *Store[T]) Create(ctx context.Context, entity *T) error {
	defer observability.TrackQuery("create", s.table)()
	if err := s.Conn(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		return s.writeError("create", err)
	}
	return nil
}

// writeError reports unique violations as conflicts and wraps the rest.
func (s *Store[T]) writeError(op string, err error) error {
	if database.IsUniqueViolation(err) {
		conflict := models.NewConflictError(s.name + " already exists")
		conflict.Err = err
		return conflict
	}
	return fmt.Errorf("%s %s: %w", op, s.table, err)
}

func (s *Store[T]) useCache(ctx context.Context) bool {
	return s.cache != nil && s.cache.enabled != nil && s.cache.enabled() && !database.InTx(ctx)
}

// GetByID loads one entity with the named associations preloaded.
func (s *Store[T]) GetByID(ctx context.Context, id uint, preload ...string) (*T, error) {
	var entity T
	fetch := func() error {
		defer observability.TrackQuery("get", s.table)()
		db := s.Conn(ctx)
		for _, p := range preload {
			db = db.Preload(p)
		}
		return db.First(&entity, id).Error
	}

	var err error
	if s.useCache(ctx) && len(preload) == 0 {
		err = cache.Aside(ctx, s.cache.key(id), &entity, s.cache.ttl, fetch)
	} else {
		err = fetch()
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", s.table, id, err)
	}
	return &entity, nil
}

// Save writes every column of entity. Associations are left untouched.
func (s *Store[T]) Save(ctx context.Context, entity *T) error {
	defer observability.TrackQuery("update", s.table)()
	if err := s.Conn(ctx).Omit(clause.Associations).Save(entity).Error; err != nil {
		return s.writeError("update", err)
	}
	if r, ok := any(entity).(models.Resource); ok {
		s.invalidate(ctx, r.GetID())
	}
	return nil
}

// Delete hard-deletes the row with id. A missing row is reported as not found.
func (s *Store[T]) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", s.table)()
	result := s.Conn(ctx).Delete(new(T), id)
	if result.Error != nil {
		return fmt.Errorf("delete %s %d: %w", s.table, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return s.notFound(id)
	}
	s.invalidate(ctx, id)
	return nil
}

// invalidate drops the cached copy of id once the surrounding transaction
// commits. A reader racing the transaction may re-cache the old row until then.
func (s *Store[T]) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	key := s.cache.key(id)
	database.AfterCommit(ctx, func(ctx context.Context) {
		cache.Invalidate(ctx, key)
	})
}

// List composes the store's query spec with params.
func (s *Store[T]) List(_ context.Context, params query.Params, preload ...string) (query.Sequence[T], error) {
	seq, err := query.Compose[T](s.Conn, s.spec, params)
	if err != nil {
		return query.Sequence[T]{}, err
	}
	return seq.Preload(preload...), nil
}
