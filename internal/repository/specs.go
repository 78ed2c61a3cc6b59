package repository

import (
	"strings"

	"folio/internal/query"

	"gorm.io/gorm"
)

// BookQuery exposes exact filters on title, author, author_id and
// publication_year, search over title and author, and ordering by title or
// publication year.
var BookQuery = query.Spec{
	FilterFields: map[string]query.FilterField{
		"title":            {Column: "title"},
		"author":           {Column: "author"},
		"author_id":        {Column: "author_id", Parse: query.Uint},
		"publication_year": {Column: "publication_year", Parse: query.Int},
	},
	SearchFields: []string{"title", "author"},
	OrderingFields: map[string]string{
		"title":            "title",
		"publication_year": "publication_year",
	},
	DefaultOrdering: "title",
}

var AuthorQuery = query.Spec{
	FilterFields: map[string]query.FilterField{
		"name": {Column: "name"},
	},
	SearchFields:    []string{"name"},
	OrderingFields:  map[string]string{"name": "name", "created_at": "created_at"},
	DefaultOrdering: "name",
}

var LibraryQuery = query.Spec{
	FilterFields: map[string]query.FilterField{
		"name": {Column: "name"},
	},
	SearchFields:    []string{"name"},
	OrderingFields:  map[string]string{"name": "name", "created_at": "created_at"},
	DefaultOrdering: "name",
}

// PostQuery filters by author username, exact title or tag name (case
// insensitive), and orders newest first by default.
var PostQuery = query.Spec{
	FilterFields: map[string]query.FilterField{
		"title":   {Column: "title"},
		"user_id": {Column: "user_id", Parse: query.Uint},
		"author":  {Scope: postsByUsername},
		"tag":     {Scope: postsByTag},
	},
	SearchFields: []string{"title", "content"},
	OrderingFields: map[string]string{
		"published_date": "published_date",
		"title":          "title",
	},
	DefaultOrdering: "-published_date",
}

var CommentQuery = query.Spec{
	FilterFields: map[string]query.FilterField{
		"post_id": {Column: "post_id", Parse: query.Uint},
		"user_id": {Column: "user_id", Parse: query.Uint},
	},
	SearchFields:    []string{"content"},
	OrderingFields:  map[string]string{"created_at": "created_at"},
	DefaultOrdering: "created_at",
}

var TagQuery = query.Spec{
	SearchFields:    []string{"name"},
	OrderingFields:  map[string]string{"name": "name_key", "created_at": "created_at"},
	DefaultOrdering: "name",
}

func postsByUsername(db *gorm.DB, username string) (*gorm.DB, error) {
	users := db.Session(&gorm.Session{NewDB: true}).
		Table("users").Select("id").Where("username = ?", username)
	return db.Where("posts.user_id IN (?)", users), nil
}

func postsByTag(db *gorm.DB, name string) (*gorm.DB, error) {
	tagged := db.Session(&gorm.Session{NewDB: true}).
		Table("post_tags").
		Select("post_tags.post_id").
		Joins("JOIN tags ON tags.id = post_tags.tag_id").
		Where("tags.name_key = ?", TagKey(name))
	return db.Where("posts.id IN (?)", tagged), nil
}

// TagKey is the case-insensitive identity of a tag name.
func TagKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
