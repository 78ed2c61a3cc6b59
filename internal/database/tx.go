package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type txKey struct{}

// WithTx returns a context carrying tx. Stores resolving their connection
// through Conn pick it up.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom returns the transaction bound to ctx, if any.
func TxFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// InTx reports whether ctx carries a transaction.
func InTx(ctx context.Context) bool {
	_, ok := TxFrom(ctx)
	return ok
}

// Conn returns the transaction bound to ctx, or db scoped to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := TxFrom(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Transactor runs units of work in a single database transaction.
type Transactor struct {
	db *gorm.DB
}

// NewTransactor returns a Transactor over db.
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// InTx runs fn with a context bound to a transaction. The transaction commits
// when fn returns nil and rolls back otherwise. Calls nested inside an open
// transaction join it. Hooks registered with AfterCommit run once the
// outermost transaction has committed.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	hooks := &commitHooks{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(WithTx(ctx, tx), commitHooksKey{}, hooks))
	})
	if err != nil {
		return err
	}
	for _, hook := range hooks.fns {
		hook(ctx)
	}
	return nil
}

type commitHooksKey struct{}

type commitHooks struct {
	fns []func(ctx context.Context)
}

// AfterCommit defers fn until the transaction carried by ctx has committed.
// Hooks of a rolled-back transaction are dropped. Outside a Transactor
// transaction fn runs right away.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if hooks, ok := ctx.Value(commitHooksKey{}).(*commitHooks); ok && InTx(ctx) {
		hooks.fns = append(hooks.fns, fn)
		return
	}
	fn(ctx)
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// whether translated by GORM or raised by the Postgres driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
