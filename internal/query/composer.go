package query

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"

	"folio/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValueParser converts a raw filter value into the column's type.
type ValueParser func(raw string) (any, error)

// Scope applies a filter that is not a plain column match.
type Scope func(db *gorm.DB, value string) (*gorm.DB, error)

// FilterField maps one filter parameter to an exact column match or a scope.
type FilterField struct {
	Column string
	Parse  ValueParser
	Scope  Scope
}

// Spec describes how one collection may be filtered, searched and ordered.
type Spec struct {
	FilterFields map[string]FilterField
	// SearchFields are columns matched case-insensitively by search terms.
	SearchFields []string
	// OrderingFields maps ordering parameter names to columns.
	OrderingFields  map[string]string
	DefaultOrdering string
	// PrimaryKey is appended ascending as the final tie-break. Defaults to "id".
	PrimaryKey string
}

// Int parses a base-10 integer filter value.
func Int(raw string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("a valid integer is required")
	}
	return n, nil
}

// Uint parses an unsigned identifier filter value.
func Uint(raw string) (any, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("a valid identifier is required")
	}
	return uint(n), nil
}

// Conn resolves the connection a query runs on for ctx.
type Conn func(ctx context.Context) *gorm.DB

// Compose validates params against spec and returns the resulting sequence.
// Nothing is executed until the sequence is consumed.
func Compose[T any](conn Conn, spec Spec, params Params) (Sequence[T], error) {
	var scopes []applyFunc

	fieldErrs := make(map[string]string)
	for _, key := range slices.Sorted(maps.Keys(params.Filters)) {
		field, ok := spec.FilterFields[key]
		if !ok {
			continue
		}
		scope, err := filterScope(field, params.Filters[key])
		if err != nil {
			fieldErrs[key] = err.Error()
			continue
		}
		scopes = append(scopes, scope)
	}
	if len(fieldErrs) > 0 {
		return Sequence[T]{}, models.NewFieldValidationError(fieldErrs)
	}

	if terms := SearchTerms(params.Search); len(terms) > 0 && len(spec.SearchFields) > 0 {
		scopes = append(scopes, searchScope(spec.SearchFields, terms))
	}

	pk := spec.PrimaryKey
	if pk == "" {
		pk = "id"
	}
	order := ParseOrdering(params.Ordering, spec.OrderingFields, spec.DefaultOrdering)
	hasPK := false
	for _, o := range order {
		if o.Column == pk {
			hasPK = true
		}
	}
	if !hasPK {
		order = append(order, OrderTerm{Column: pk})
	}

	return Sequence[T]{
		conn:   conn,
		scopes: scopes,
		order:  order,
		limit:  params.Limit,
		offset: params.Offset,
	}, nil
}

// applyFunc narrows a query.
type applyFunc func(db *gorm.DB) (*gorm.DB, error)

func filterScope(field FilterField, raw string) (applyFunc, error) {
	if field.Scope != nil {
		return func(db *gorm.DB) (*gorm.DB, error) {
			return field.Scope(db, raw)
		}, nil
	}
	var value any = raw
	if field.Parse != nil {
		v, err := field.Parse(raw)
		if err != nil {
			return nil, err
		}
		value = v
	}
	column := clause.Column{Table: clause.CurrentTable, Name: field.Column}
	return func(db *gorm.DB) (*gorm.DB, error) {
		return db.Where(clause.Eq{Column: column, Value: value}), nil
	}, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// searchScope requires every term to appear in at least one field.
func searchScope(fields []string, terms []string) applyFunc {
	return func(db *gorm.DB) (*gorm.DB, error) {
		for _, term := range terms {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
			exprs := make([]clause.Expression, 0, len(fields))
			for _, f := range fields {
				exprs = append(exprs, clause.Expr{
					SQL:  "LOWER(?) LIKE ? ESCAPE '!'",
					Vars: []any{clause.Column{Table: clause.CurrentTable, Name: f}, pattern},
				})
			}
			db = db.Where(clause.Or(exprs...))
		}
		return db, nil
	}
}

// Sequence is a lazy, restartable view over a composed query. Each consuming
// call runs the query again.
type Sequence[T any] struct {
	conn    Conn
	scopes  []applyFunc
	order   []OrderTerm
	limit   int
	offset  int
	preload []string
}

// Preload returns a copy of s that loads the named associations.
func (s Sequence[T]) Preload(associations ...string) Sequence[T] {
	s.preload = append(append([]string(nil), s.preload...), associations...)
	return s
}

// Ordering returns the resolved order terms, tie-break included.
func (s Sequence[T]) Ordering() []OrderTerm {
	return append([]OrderTerm(nil), s.order...)
}

func (s Sequence[T]) filtered(ctx context.Context) (*gorm.DB, error) {
	db := s.conn(ctx).Model(new(T))
	for _, scope := range s.scopes {
		var err error
		if db, err = scope(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func (s Sequence[T]) ordered(db *gorm.DB) *gorm.DB {
	cols := make([]clause.OrderByColumn, 0, len(s.order))
	for _, o := range s.order {
		cols = append(cols, clause.OrderByColumn{
			Column: clause.Column{Table: clause.CurrentTable, Name: o.Column},
			Desc:   o.Desc,
		})
	}
	db = db.Order(clause.OrderBy{Columns: cols})
	for _, p := range s.preload {
		db = db.Preload(p)
	}
	return db
}

// Count returns the number of matching rows, ignoring pagination.
func (s Sequence[T]) Count(ctx context.Context) (int64, error) {
	db, err := s.filtered(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// List returns the requested page.
func (s Sequence[T]) List(ctx context.Context) ([]T, error) {
	return s.page(ctx, s.offset, s.limit)
}

func (s Sequence[T]) page(ctx context.Context, offset, limit int) ([]T, error) {
	db, err := s.filtered(ctx)
	if err != nil {
		return nil, err
	}
	db = s.ordered(db)
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	out := make([]T, 0)
	if err := db.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

const batchSize = 100

// All yields the requested page in order, fetching batchSize rows at a time.
// Iteration stops at the first error, which is yielded once.
func (s Sequence[T]) All(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		offset, remaining := s.offset, s.limit
		for {
			size := batchSize
			if s.limit > 0 {
				if remaining <= 0 {
					return
				}
				size = min(size, remaining)
			}
			batch, err := s.page(ctx, offset, size)
			if err != nil {
				yield(nil, err)
				return
			}
			for i := range batch {
				if !yield(&batch[i], nil) {
					return
				}
			}
			if len(batch) < size {
				return
			}
			offset += len(batch)
			remaining -= len(batch)
		}
	}
}
