// Package policy decides whether an actor may perform an action on a resource.
//
// Rules are plain predicates combined with All and Any. Nothing in this
// package touches storage; callers load the resource first and pass it in.
package policy

import (
	"folio/internal/models"
	"folio/internal/observability"
)

// Action is an operation an actor attempts on a resource.
type Action string

const (
	Read   Action = "read"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

// Mutating reports whether the action changes state.
func (a Action) Mutating() bool {
	return a != Read
}

// Rule is a pure access predicate. owned is nil when the check is made for
// the kind as a whole, before any resource has been loaded.
type Rule func(actor models.Actor, action Action, kind models.ResourceKind, owned models.Owned) bool

// All is satisfied when every rule is.
func All(rules ...Rule) Rule {
	return func(actor models.Actor, action Action, kind models.ResourceKind, owned models.Owned) bool {
		for _, r := range rules {
			if !r(actor, action, kind, owned) {
				return false
			}
		}
		return true
	}
}

// Any is satisfied when at least one rule is.
func Any(rules ...Rule) Rule {
	return func(actor models.Actor, action Action, kind models.ResourceKind, owned models.Owned) bool {
		for _, r := range rules {
			if r(actor, action, kind, owned) {
				return true
			}
		}
		return false
	}
}

// Authenticated requires an identified actor.
func Authenticated(actor models.Actor, _ Action, _ models.ResourceKind, _ models.Owned) bool {
	return actor.Authenticated()
}

// ReadOnly matches read actions.
func ReadOnly(_ models.Actor, action Action, _ models.ResourceKind, _ models.Owned) bool {
	return action == Read
}

var publicKinds = map[models.ResourceKind]bool{
	models.KindBook:    true,
	models.KindAuthor:  true,
	models.KindLibrary: true,
	models.KindPost:    true,
	models.KindComment: true,
	models.KindTag:     true,
}

// PubliclyReadable matches kinds anyone may list and view.
func PubliclyReadable(_ models.Actor, _ Action, kind models.ResourceKind, _ models.Owned) bool {
	return publicKinds[kind]
}

type permission struct {
	kind   models.ResourceKind
	action Action
}

func perms(kind models.ResourceKind, actions ...Action) []permission {
	out := make([]permission, 0, len(actions))
	for _, a := range actions {
		out = append(out, permission{kind: kind, action: a})
	}
	return out
}

func permissionSet(groups ...[]permission) map[permission]bool {
	set := make(map[permission]bool)
	for _, g := range groups {
		for _, p := range g {
			set[p] = true
		}
	}
	return set
}

// rolePermissions is the fixed role table for catalog resources.
var rolePermissions = map[models.Role]map[permission]bool{
	models.RoleAdmin: permissionSet(
		perms(models.KindBook, Create, Update, Delete),
		perms(models.KindAuthor, Create, Update, Delete),
		perms(models.KindLibrary, Create, Update, Delete),
		perms(models.KindTag, Create, Delete),
	),
	models.RoleLibrarian: permissionSet(
		perms(models.KindBook, Create, Update, Delete),
		perms(models.KindAuthor, Create, Update),
		perms(models.KindLibrary, Update),
	),
	models.RoleMember: permissionSet(
		perms(models.KindBook, Create),
	),
}

// RolePermits consults the role table.
func RolePermits(actor models.Actor, action Action, kind models.ResourceKind, _ models.Owned) bool {
	return rolePermissions[actor.Role][permission{kind: kind, action: action}]
}

// IsOwner matches when the actor owns the resource. Without a loaded
// resource it passes, leaving the decision to the resource-level check.
func IsOwner(actor models.Actor, _ Action, _ models.ResourceKind, owned models.Owned) bool {
	if owned == nil {
		return true
	}
	return owned.OwnerID() == actor.UserID
}

func kindIs(kinds ...models.ResourceKind) Rule {
	return func(_ models.Actor, _ Action, kind models.ResourceKind, _ models.Owned) bool {
		for _, k := range kinds {
			if k == kind {
				return true
			}
		}
		return false
	}
}

func actionIs(actions ...Action) Rule {
	return func(_ models.Actor, action Action, _ models.ResourceKind, _ models.Owned) bool {
		for _, a := range actions {
			if a == action {
				return true
			}
		}
		return false
	}
}

// Default is the application's access policy.
var Default = Any(
	All(ReadOnly, PubliclyReadable),
	All(Authenticated, Any(
		// posts and comments: any role may write, only the author may change
		All(kindIs(models.KindPost, models.KindComment), actionIs(Create)),
		All(kindIs(models.KindPost, models.KindComment), actionIs(Update, Delete), IsOwner),
		All(kindIs(models.KindProfile), actionIs(Read, Update), IsOwner),
		RolePermits,
	)),
)

// Allowed reports whether actor may perform action. Pass a nil owned for a
// kind-level check.
func Allowed(actor models.Actor, action Action, kind models.ResourceKind, owned models.Owned) bool {
	return Default(actor, action, kind, owned)
}

// Check is Allowed reported as an error: Unauthorized for anonymous actors,
// Forbidden for authenticated ones.
func Check(actor models.Actor, action Action, kind models.ResourceKind, owned models.Owned) error {
	if Allowed(actor, action, kind, owned) {
		return nil
	}
	observability.AuthorizationDenials.WithLabelValues(string(kind), string(action)).Inc()
	if !actor.Authenticated() {
		return models.NewUnauthorizedError("Authentication required to " + string(action) + " " + string(kind))
	}
	return models.NewForbiddenError("You do not have permission to " + string(action) + " this " + string(kind))
}

// OwnedOf returns the ownership view of res, or nil when res is not owned.
func OwnedOf(res any) models.Owned {
	if o, ok := res.(models.Owned); ok {
		return o
	}
	return nil
}
