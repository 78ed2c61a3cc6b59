package repository

import (
	"context"
	"testing"
	"time"

	"folio/internal/models"
	"folio/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_TagsAndComments(t *testing.T) {
	db := setupDB(t)
	posts := NewPostRepository(db)
	tags := NewTagRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "alice", models.RoleMember)
	post := &models.Post{Title: "Hello", Content: "World", UserID: author.ID, PublishedDate: time.Now()}
	require.NoError(t, posts.Create(ctx, post))

	set, err := tags.GetOrCreate(ctx, []string{"Django", "python"})
	require.NoError(t, err)
	require.NoError(t, posts.ReplaceTags(ctx, post, set))

	loaded, err := posts.GetByID(ctx, post.ID, "User", "Tags")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.User.Username)
	assert.ElementsMatch(t, []string{"Django", "python"}, loaded.TagNames())

	// Replacing swaps the whole set.
	set, err = tags.GetOrCreate(ctx, []string{"go"})
	require.NoError(t, err)
	require.NoError(t, posts.ReplaceTags(ctx, post, set))
	loaded, err = posts.GetByID(ctx, post.ID, "Tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, loaded.TagNames())

	require.NoError(t, posts.ReplaceTags(ctx, post, nil))
	loaded, err = posts.GetByID(ctx, post.ID, "Tags")
	require.NoError(t, err)
	assert.Empty(t, loaded.Tags)

	for _, body := range []string{"first", "second"} {
		require.NoError(t, comments.Create(ctx, &models.Comment{Content: body, UserID: author.ID, PostID: post.ID}))
	}
	require.NoError(t, posts.DeleteComments(ctx, post.ID))

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostRepository_ListFilters(t *testing.T) {
	db := setupDB(t)
	posts := NewPostRepository(db)
	tags := NewTagRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", models.RoleMember)
	bob := createUser(t, db, "bob", models.RoleMember)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older := &models.Post{Title: "Older", Content: "about django", UserID: alice.ID, PublishedDate: base}
	newer := &models.Post{Title: "Newer", Content: "about go", UserID: bob.ID, PublishedDate: base.Add(time.Hour)}
	require.NoError(t, posts.Create(ctx, older))
	require.NoError(t, posts.Create(ctx, newer))

	set, err := tags.GetOrCreate(ctx, []string{"Django"})
	require.NoError(t, err)
	require.NoError(t, posts.ReplaceTags(ctx, older, set))

	list := func(p query.Params) []string {
		seq, err := posts.List(ctx, p)
		require.NoError(t, err)
		items, err := seq.List(ctx)
		require.NoError(t, err)
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Newer", "Older"}, list(query.Params{}))
	assert.Equal(t, []string{"Older", "Newer"}, list(query.Params{Ordering: "published_date"}))
	assert.Equal(t, []string{"Older"}, list(query.Params{Filters: map[string]string{"tag": "DJANGO"}}))
	assert.Equal(t, []string{"Newer"}, list(query.Params{Filters: map[string]string{"author": "bob"}}))
	assert.Equal(t, []string{"Older"}, list(query.Params{Search: "django"}))
	assert.Empty(t, list(query.Params{Filters: map[string]string{"author": "nobody"}}))
}

func TestLibraryRepository_ReplaceBooks(t *testing.T) {
	db := setupDB(t)
	libraries := NewLibraryRepository(db)
	books := NewBookRepository(db, nil)
	ctx := context.Background()

	a := &models.Book{Title: "A", Author: "X"}
	b := &models.Book{Title: "B", Author: "Y"}
	require.NoError(t, books.Create(ctx, a))
	require.NoError(t, books.Create(ctx, b))

	lib := &models.Library{Name: "Central"}
	require.NoError(t, libraries.Create(ctx, lib))
	require.NoError(t, libraries.ReplaceBooks(ctx, lib, []uint{a.ID, b.ID}))

	loaded, err := libraries.GetByID(ctx, lib.ID, "Books")
	require.NoError(t, err)
	assert.Len(t, loaded.Books, 2)

	require.NoError(t, libraries.ReplaceBooks(ctx, lib, []uint{b.ID}))
	loaded, err = libraries.GetByID(ctx, lib.ID, "Books")
	require.NoError(t, err)
	require.Len(t, loaded.Books, 1)
	assert.Equal(t, "B", loaded.Books[0].Title)

	require.NoError(t, libraries.ReplaceBooks(ctx, lib, nil))
	loaded, err = libraries.GetByID(ctx, lib.ID, "Books")
	require.NoError(t, err)
	assert.Empty(t, loaded.Books)

	// book rows are untouched by association changes
	got, err := books.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
}

func TestAuthorRepository_DetachBooks(t *testing.T) {
	db := setupDB(t)
	authors := NewAuthorRepository(db)
	books := NewBookRepository(db, nil)
	ctx := context.Background()

	author := &models.Author{Name: "Tolkien"}
	require.NoError(t, authors.Create(ctx, author))
	book := &models.Book{Title: "The Hobbit", Author: "Tolkien", AuthorID: &author.ID}
	require.NoError(t, books.Create(ctx, book))

	loaded, err := authors.GetByID(ctx, author.ID, "Books")
	require.NoError(t, err)
	require.Len(t, loaded.Books, 1)

	require.NoError(t, authors.DetachBooks(ctx, author.ID))
	require.NoError(t, authors.Delete(ctx, author.ID))

	got, err := books.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AuthorID)
}
