// Package service implements permission-gated CRUD over the entity stores.
package service

import (
	"context"
	"time"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/policy"
	"folio/internal/query"
	"folio/internal/repository"
)

// Transactor runs a unit of work in one transaction bound to the context.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Validator checks field rules and supplies the clock they are evaluated against.
type Validator interface {
	Validate(s any) error
	Now() time.Time
}

// Descriptor tells an Orchestrator how to build, change and clean up one
// entity type. C is the create payload, U the partial update payload.
type Descriptor[T any, C any, U any] struct {
	Name string
	Kind models.ResourceKind
	// Preload lists associations loaded for detail and list responses.
	Preload []string
	// New builds an unsaved entity attributed to actor.
	New func(ctx context.Context, actor models.Actor, in C) (*T, error)
	// Patch applies the fields present in in.
	Patch func(ctx context.Context, entity *T, in U) error

	AfterCreate  func(ctx context.Context, entity *T, in C) error
	AfterUpdate  func(ctx context.Context, entity *T, in U) error
	BeforeDelete func(ctx context.Context, entity *T) error
}

// Guard inspects a loaded entity before the access check, e.g. to confirm it
// belongs to the parent named in the request path.
type Guard[T any] func(entity *T) error

// Orchestrator sequences access checks, validation and persistence for one
// entity type. Every write runs in a single transaction.
type Orchestrator[T any, PT interface {
	*T
	models.Resource
}, C any, U any] struct {
	repo  repository.Repository[T]
	tx    Transactor
	valid Validator
	desc  Descriptor[T, C, U]
}

// NewOrchestrator wires an Orchestrator.
func NewOrchestrator[T any, PT interface {
	*T
	models.Resource
}, C any, U any](repo repository.Repository[T], tx Transactor, valid Validator, desc Descriptor[T, C, U]) *Orchestrator[T, PT, C, U] {
	return &Orchestrator[T, PT, C, U]{repo: repo, tx: tx, valid: valid, desc: desc}
}

func (o *Orchestrator[T, PT, C, U]) check(actor models.Actor, action policy.Action, entity *T) error {
	var owned models.Owned
	if entity != nil {
		owned = policy.OwnedOf(PT(entity))
	}
	return policy.Check(actor, action, o.desc.Kind, owned)
}

func (o *Orchestrator[T, PT, C, U]) load(ctx context.Context, actor models.Actor, action policy.Action, id uint, guards []Guard[T]) (*T, error) {
	entity, err := o.repo.GetByID(ctx, id, o.desc.Preload...)
	if err != nil {
		return nil, err
	}
	for _, g := range guards {
		if err := g(entity); err != nil {
			return nil, err
		}
	}
	if err := o.check(actor, action, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// Create checks that actor may create this kind, builds and validates the
// entity, then inserts it and runs AfterCreate in one transaction.
func (o *Orchestrator[T, PT, C, U]) Create(ctx context.Context, actor models.Actor, in C) (*T, error) {
	ctx, span := observability.StartServiceSpan(ctx, o.desc.Name, "Create", actor)
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if err = o.check(actor, policy.Create, nil); err != nil {
		return nil, err
	}

	var entity *T
	if entity, err = o.desc.New(ctx, actor, in); err != nil {
		return nil, err
	}
	if err = o.valid.Validate(entity); err != nil {
		return nil, err
	}

	err = o.tx.InTx(ctx, func(ctx context.Context) error {
		if err := o.repo.Create(ctx, entity); err != nil {
			return err
		}
		if o.desc.AfterCreate != nil {
			return o.desc.AfterCreate(ctx, entity, in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	id := PT(entity).GetID()
	middleware.Logger.InfoContext(ctx, o.desc.Name+" created", "id", id, "actor_id", actor.UserID)

	var created *T
	created, err = o.repo.GetByID(ctx, id, o.desc.Preload...)
	return created, err
}

// Get returns one entity if actor may read it.
func (o *Orchestrator[T, PT, C, U]) Get(ctx context.Context, actor models.Actor, id uint, guards ...Guard[T]) (*T, error) {
	if err := o.check(actor, policy.Read, nil); err != nil {
		return nil, err
	}
	return o.load(ctx, actor, policy.Read, id, guards)
}

// List returns the filtered, searched, ordered page described by params.
func (o *Orchestrator[T, PT, C, U]) List(ctx context.Context, actor models.Actor, params query.Params) (query.Sequence[T], error) {
	if err := o.check(actor, policy.Read, nil); err != nil {
		return query.Sequence[T]{}, err
	}
	return o.repo.List(ctx, params, o.desc.Preload...)
}

// Update applies a partial change. Loading, the ownership check, validation,
// the write and AfterUpdate share one transaction; any failure rolls back.
func (o *Orchestrator[T, PT, C, U]) Update(ctx context.Context, actor models.Actor, id uint, in U, guards ...Guard[T]) (*T, error) {
	ctx, span := observability.StartServiceSpan(ctx, o.desc.Name, "Update", actor)
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if err = o.check(actor, policy.Update, nil); err != nil {
		return nil, err
	}

	err = o.tx.InTx(ctx, func(ctx context.Context) error {
		entity, err := o.load(ctx, actor, policy.Update, id, guards)
		if err != nil {
			return err
		}
		if err := o.desc.Patch(ctx, entity, in); err != nil {
			return err
		}
		if err := o.valid.Validate(entity); err != nil {
			return err
		}
		if err := o.repo.Save(ctx, entity); err != nil {
			return err
		}
		if o.desc.AfterUpdate != nil {
			return o.desc.AfterUpdate(ctx, entity, in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, o.desc.Name+" updated", "id", id, "actor_id", actor.UserID)

	var updated *T
	updated, err = o.repo.GetByID(ctx, id, o.desc.Preload...)
	return updated, err
}

// Delete hard-deletes one entity after BeforeDelete has cleaned up its
// dependents. Deleting a missing entity is NotFound.
func (o *Orchestrator[T, PT, C, U]) Delete(ctx context.Context, actor models.Actor, id uint, guards ...Guard[T]) error {
	ctx, span := observability.StartServiceSpan(ctx, o.desc.Name, "Delete", actor)
	var err error
	defer func() { observability.EndSpan(span, err) }()

	if err = o.check(actor, policy.Delete, nil); err != nil {
		return err
	}

	err = o.tx.InTx(ctx, func(ctx context.Context) error {
		entity, err := o.load(ctx, actor, policy.Delete, id, guards)
		if err != nil {
			return err
		}
		if o.desc.BeforeDelete != nil {
			if err := o.desc.BeforeDelete(ctx, entity); err != nil {
				return err
			}
		}
		return o.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, o.desc.Name+" deleted", "id", id, "actor_id", actor.UserID)
	return nil
}
