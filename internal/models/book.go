package models

import (
	"time"
)

// Book is a catalog entry. Author is the display name; AuthorID optionally
// links the book to an Author record.
type Book struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"not null;index" json:"title" validate:"required,notblank,max=200"`
	Author          string     `gorm:"not null;index" json:"author" validate:"required,notblank,max=200"`
	AuthorID        *uint      `gorm:"index" json:"author_id,omitempty"`
	PublicationYear int        `gorm:"index" json:"publication_year" validate:"gte=0,notfutureyear"`
	Description     string     `gorm:"type:text" json:"description" validate:"max=5000"`
	PublishedAt     *time.Time `json:"published_at,omitempty" validate:"omitempty,notfuture"`
	CreatedByID     *uint      `gorm:"index" json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Book) ResourceKind() ResourceKind { return KindBook }
func (b Book) GetID() uint              { return b.ID }

// Author owns a collection of books.
type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name" validate:"required,notblank,max=200"`
	Books     []Book    `gorm:"foreignKey:AuthorID" json:"books"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Author) ResourceKind() ResourceKind { return KindAuthor }
func (a Author) GetID() uint              { return a.ID }

// Library groups books held at one location.
type Library struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name" validate:"required,notblank,max=200"`
	Books     []Book    `gorm:"many2many:library_books" json:"books"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Library) ResourceKind() ResourceKind { return KindLibrary }
func (l Library) GetID() uint              { return l.ID }
