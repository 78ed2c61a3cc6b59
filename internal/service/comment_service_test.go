package service

import (
	"context"
	"testing"

	"folio/internal/models"
	"folio/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.member, "Discuss", "")

	comment, err := f.comments.CreateComment(ctx, f.other, CreateCommentInput{PostID: post.ID, Content: "First!"})
	require.NoError(t, err)
	assert.Equal(t, f.other.UserID, comment.UserID)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, "bob", comment.User.Username)

	seq, err := f.comments.ListComments(ctx, models.Anonymous, post.ID, query.Params{})
	require.NoError(t, err)
	listed, err := seq.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, comment.ID, listed[0].ID)

	updated, err := f.comments.UpdateComment(ctx, f.other, post.ID, comment.ID, UpdateCommentInput{Content: ptr("Second thoughts")})
	require.NoError(t, err)
	assert.Equal(t, "Second thoughts", updated.Content)

	require.NoError(t, f.comments.DeleteComment(ctx, f.other, post.ID, comment.ID))
	err = f.comments.DeleteComment(ctx, f.other, post.ID, comment.ID)
	requireCode(t, err, models.CodeNotFound)
}

func TestCommentService_PostMustExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.comments.CreateComment(ctx, f.member, CreateCommentInput{PostID: 404, Content: "Hello?"})
	requireCode(t, err, models.CodeNotFound)

	_, err = f.comments.ListComments(ctx, models.Anonymous, 404, query.Params{})
	requireCode(t, err, models.CodeNotFound)

	_, err = f.comments.CreateComment(ctx, models.Anonymous, CreateCommentInput{PostID: 404, Content: "Hello?"})
	requireCode(t, err, models.CodeUnauthorized)
}

func TestCommentService_ScopedToPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createPost(t, f.member, "First", "")
	second := f.createPost(t, f.member, "Second", "")

	comment, err := f.comments.CreateComment(ctx, f.member, CreateCommentInput{PostID: first.ID, Content: "On first"})
	require.NoError(t, err)

	_, err = f.comments.GetComment(ctx, f.member, second.ID, comment.ID)
	requireCode(t, err, models.CodeNotFound)

	_, err = f.comments.UpdateComment(ctx, f.member, second.ID, comment.ID, UpdateCommentInput{Content: ptr("moved")})
	requireCode(t, err, models.CodeNotFound)

	seq, err := f.comments.ListComments(ctx, models.Anonymous, second.ID, query.Params{})
	require.NoError(t, err)
	n, err := seq.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentService_OnlyAuthorMayChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.createPost(t, f.member, "Post", "")

	comment, err := f.comments.CreateComment(ctx, f.other, CreateCommentInput{PostID: post.ID, Content: "Mine"})
	require.NoError(t, err)

	for _, actor := range []models.Actor{f.member, f.admin} {
		_, err = f.comments.UpdateComment(ctx, actor, post.ID, comment.ID, UpdateCommentInput{Content: ptr("edited")})
		requireCode(t, err, models.CodeForbidden)
		err = f.comments.DeleteComment(ctx, actor, post.ID, comment.ID)
		requireCode(t, err, models.CodeForbidden)
	}

	_, err = f.comments.UpdateComment(ctx, f.other, post.ID, comment.ID, UpdateCommentInput{Content: ptr("  ")})
	requireCode(t, err, models.CodeValidation)
}
