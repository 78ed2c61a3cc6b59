package repository

import (
	"context"
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "carol", Email: "carol@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, models.RoleMember, user.Role)

	dup := &models.User{Username: "carol", Email: "other@example.com", Password: "hash"}
	assert.Equal(t, models.CodeConflict, models.CodeOf(repo.Create(ctx, dup)))

	bad := &models.User{Username: "dave", Email: "dave@example.com", Role: "root"}
	assert.Equal(t, models.CodeValidation, models.CodeOf(repo.Create(ctx, bad)))

	got, err := repo.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))

	require.NoError(t, repo.SetRole(ctx, user.ID, models.RoleLibrarian))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleLibrarian, got.Role)

	librarians, err := repo.ListByRole(ctx, models.RoleLibrarian)
	require.NoError(t, err)
	require.Len(t, librarians, 1)
	assert.Equal(t, "carol", librarians[0].Username)

	assert.Equal(t, models.CodeNotFound, models.CodeOf(repo.SetRole(ctx, 999, models.RoleAdmin)))
	assert.Equal(t, models.CodeValidation, models.CodeOf(repo.SetRole(ctx, user.ID, "root")))

	_, err = repo.GetByID(ctx, 999)
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
}

func TestProfileRepository_GetOrCreate(t *testing.T) {
	db := setupDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	user := createUser(t, db, "erin", models.RoleMember)

	first, err := repo.GetOrCreateForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, first.UserID)

	first.Bio = "Reader"
	require.NoError(t, repo.Save(ctx, first))

	second, err := repo.GetOrCreateForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Reader", second.Bio)
}
