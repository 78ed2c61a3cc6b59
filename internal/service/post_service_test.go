package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"folio/internal/models"
	"folio/internal/query"
	"folio/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createPost(t *testing.T, actor models.Actor, title, tags string) *models.Post {
	t.Helper()
	post, err := f.posts.CreatePost(context.Background(), actor, CreatePostInput{
		Title:   title,
		Content: "Body of " + title,
		Tags:    NormalizeTags(tags),
	})
	require.NoError(t, err)
	return post
}

func (f *fixture) postTagRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table("post_tags").Count(&n).Error)
	return n
}

func TestPostService_CreateAttributesAuthorAndTags(t *testing.T) {
	f := newFixture(t)

	post := f.createPost(t, f.member, "Getting started", "Django, python, DJANGO")

	assert.Equal(t, f.member.UserID, post.UserID)
	assert.Equal(t, "alice", post.User.Username)
	assert.True(t, post.PublishedDate.Equal(fixedNow))
	assert.ElementsMatch(t, []string{"Django", "python"}, post.TagNames())
	assert.EqualValues(t, 2, f.count(t, &models.Tag{}))

	second := f.createPost(t, f.other, "Go web apps", "django, Go")
	assert.ElementsMatch(t, []string{"Django", "Go"}, second.TagNames(), "existing tags keep their first casing")
	assert.EqualValues(t, 3, f.count(t, &models.Tag{}))
}

func TestPostService_CreateRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.posts.CreatePost(context.Background(), models.Anonymous, CreatePostInput{Title: "Hi", Content: "there"})
	requireCode(t, err, models.CodeUnauthorized)
}

func TestPostService_UpdateTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.member, "Tags", "go, sql")

	updated, err := f.posts.UpdatePost(ctx, f.member, post.ID, UpdatePostInput{Title: ptr("Tags, revised")})
	require.NoError(t, err)
	assert.Equal(t, "Tags, revised", updated.Title)
	assert.ElementsMatch(t, []string{"go", "sql"}, updated.TagNames(), "absent tags field leaves tags untouched")

	var tags TagList
	require.NoError(t, json.Unmarshal([]byte(`"rust"`), &tags))
	updated, err = f.posts.UpdatePost(ctx, f.member, post.ID, UpdatePostInput{Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, updated.TagNames())

	require.NoError(t, json.Unmarshal([]byte(`""`), &tags))
	updated, err = f.posts.UpdatePost(ctx, f.member, post.ID, UpdatePostInput{Tags: &tags})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
	assert.Zero(t, f.postTagRows(t))
}

func TestPostService_OnlyAuthorMayChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.member, "Mine", "")

	tests := []struct {
		name  string
		actor models.Actor
		code  string
	}{
		{"anonymous", models.Anonymous, models.CodeUnauthorized},
		{"another member", f.other, models.CodeForbidden},
		{"admin", f.admin, models.CodeForbidden},
		{"librarian", f.librarian, models.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.posts.UpdatePost(ctx, tt.actor, post.ID, UpdatePostInput{Title: ptr("Theirs")})
			requireCode(t, err, tt.code)

			err = f.posts.DeletePost(ctx, tt.actor, post.ID)
			requireCode(t, err, tt.code)
		})
	}

	got, err := f.posts.GetPost(ctx, models.Anonymous, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)
}

func TestPostService_DeleteRemovesCommentsAndTagLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.member, "Short lived", "ephemeral")

	_, err := f.comments.CreateComment(ctx, f.other, CreateCommentInput{PostID: post.ID, Content: "Nice"})
	require.NoError(t, err)

	require.NoError(t, f.posts.DeletePost(ctx, f.member, post.ID))

	assert.Zero(t, f.count(t, &models.Post{}))
	assert.Zero(t, f.count(t, &models.Comment{}))
	assert.Zero(t, f.postTagRows(t))
	assert.EqualValues(t, 1, f.count(t, &models.Tag{}), "tags outlive their posts")

	err = f.posts.DeletePost(ctx, f.member, post.ID)
	requireCode(t, err, models.CodeNotFound)
}

type failingTagLinks struct {
	repository.PostRepository
}

func (failingTagLinks) ReplaceTags(context.Context, *models.Post, []models.Tag) error {
	return errors.New("link failed")
}

func TestPostService_FailedTagAttachmentRollsBack(t *testing.T) {
	f := newFixture(t)
	posts := NewPostService(failingTagLinks{f.postRepo}, f.tagRepo, f.tx, f.valid)

	_, err := posts.CreatePost(context.Background(), f.member, CreatePostInput{
		Title:   "Doomed",
		Content: "Never stored",
		Tags:    NormalizeTags("new-tag, other-tag"),
	})

	appErr := requireCode(t, err, models.CodeInternal)
	assert.Equal(t, "Internal server error", appErr.Message)
	assert.Zero(t, f.count(t, &models.Post{}))
	assert.Zero(t, f.count(t, &models.Tag{}), "tags created in the failed transaction are rolled back")
	assert.Zero(t, f.postTagRows(t))
}

func TestPostService_RejectsOverlongTag(t *testing.T) {
	f := newFixture(t)

	long := "a"
	for len(long) <= 50 {
		long += "a"
	}
	_, err := f.posts.CreatePost(context.Background(), f.member, CreatePostInput{
		Title:   "Tagged",
		Content: "Body",
		Tags:    TagList{long},
	})

	appErr := requireCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, "tags")
	assert.Zero(t, f.count(t, &models.Post{}))
}

func TestPostService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createPost(t, f.member, "Django tips", "Django")
	f.createPost(t, f.member, "Rust notes", "rust")
	f.createPost(t, f.other, "More Django", "django, python")

	titles := func(params query.Params) []string {
		t.Helper()
		seq, err := f.posts.ListPosts(ctx, models.Anonymous, params)
		require.NoError(t, err)
		posts, err := seq.List(ctx)
		require.NoError(t, err)
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Django tips", "Rust notes"}, titles(query.Params{
		Filters:  map[string]string{"author": "alice"},
		Ordering: "title",
	}))
	assert.Equal(t, []string{"Django tips", "More Django"}, titles(query.Params{
		Filters:  map[string]string{"tag": "DJANGO"},
		Ordering: "title",
	}))
	assert.Equal(t, []string{"More Django"}, titles(query.Params{Search: "more django"}))
	// equal published dates fall back to id order
	assert.Equal(t, []string{"Django tips", "Rust notes", "More Django"}, titles(query.Params{}))
}
