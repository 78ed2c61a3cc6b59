package models

import (
	"time"
)

// Post represents a blog post. Only its author may change or remove it.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null;index" json:"title" validate:"required,notblank,max=200"`
	Content       string    `gorm:"type:text;not null" json:"content" validate:"required,notblank"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"user"`
	Tags          []Tag     `gorm:"many2many:post_tags" json:"tags"`
	PublishedDate time.Time `gorm:"not null;index" json:"published_date"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Post) ResourceKind() ResourceKind { return KindPost }
func (p Post) GetID() uint              { return p.ID }
func (p Post) OwnerID() uint            { return p.UserID }

// TagNames returns the names of the post's tags in stored order.
func (p Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Comment is attached to exactly one post and owned by its author.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content" validate:"required,notblank,max=2000"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) ResourceKind() ResourceKind { return KindComment }
func (c Comment) GetID() uint              { return c.ID }
func (c Comment) OwnerID() uint            { return c.UserID }

// Tag is shared by many posts. NameKey holds the lower-cased name and carries
// the unique index, which makes names unique regardless of case.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name" validate:"required,notblank,max=50"`
	NameKey   string    `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) ResourceKind() ResourceKind { return KindTag }
func (t Tag) GetID() uint              { return t.ID }

// Profile holds the public-facing details of a user.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio       string    `gorm:"type:text" json:"bio" validate:"max=500"`
	Avatar    string    `json:"avatar" validate:"omitempty,url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) ResourceKind() ResourceKind { return KindProfile }
func (p Profile) GetID() uint              { return p.ID }
func (p Profile) OwnerID() uint            { return p.UserID }
