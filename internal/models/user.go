// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is the single role an authenticated user holds.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleMember    Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return true
	}
	return false
}

// User represents an account in the Folio application. Users are embedded in
// public post and comment payloads, so credentials and contact details are
// never serialized.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"type:varchar(16);not null;default:member" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the identity making a request. A zero UserID is the anonymous actor.
type Actor struct {
	UserID uint
	Role   Role
}

// Anonymous is the actor used when no credentials were presented.
var Anonymous = Actor{}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

// ActorFor builds the actor for a persisted user.
func ActorFor(u *User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}
