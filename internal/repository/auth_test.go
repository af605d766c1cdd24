package repository_test

import (
	"context"
	"testing"

	"blog-backend/internal/models"
	"blog-backend/internal/repository"
	"blog-backend/internal/testutil"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuthRepository_CreateAndGet(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	repo := repository.NewAuthRepository(db, zap.NewNop())
	ctx := context.Background()

	username := gofakeit.Username()
	user := &models.User{Username: username, PasswordHash: "hash", Role: models.RoleAdmin}
	require.NoError(t, repo.CreateUser(ctx, user))
	require.NotZero(t, user.ID)
	require.False(t, user.CreatedAt.IsZero())

	got, err := repo.GetUserByUsername(ctx, username)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, "hash", got.PasswordHash)
	require.Equal(t, models.RoleAdmin, got.Role)
}

func TestAuthRepository_GetMissingUser(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	repo := repository.NewAuthRepository(db, zap.NewNop())

	got, err := repo.GetUserByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestAuthRepository_DuplicateUsername(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	repo := repository.NewAuthRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "h1", Role: models.RoleUser}))
	err := repo.CreateUser(ctx, &models.User{Username: "alice", PasswordHash: "h2", Role: models.RoleAdmin})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "h1", got.PasswordHash)
}

func TestMigrateDB_Idempotent(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	require.NoError(t, repository.MigrateDB(db, zap.NewNop()))
}
