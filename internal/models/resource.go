package models

// ResourceKind names a kind of persisted entity subject to access control.
type ResourceKind string

const (
	KindBook    ResourceKind = "book"
	KindAuthor  ResourceKind = "author"
	KindLibrary ResourceKind = "library"
	KindPost    ResourceKind = "post"
	KindComment ResourceKind = "comment"
	KindTag     ResourceKind = "tag"
	KindProfile ResourceKind = "profile"
)

// Resource is implemented by every entity the access policy reasons about.
type Resource interface {
	ResourceKind() ResourceKind
	GetID() uint
}

// Owned is implemented by entities that belong exclusively to one user.
type Owned interface {
	OwnerID() uint
}
