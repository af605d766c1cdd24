package repository_test

import (
	"context"
	"testing"

	"blog-backend/internal/models"
	"blog-backend/internal/repository"
	"blog-backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPostRepo(t *testing.T) repository.PostRepository {
	t.Helper()
	return repository.NewPostRepository(testutil.OpenInMemoryDB(t), zap.NewNop())
}

func samplePost(title string) *models.Post {
	return &models.Post{
		Title:     title,
		Content:   "C",
		ImageURL:  "https://example.com/u.png",
		Author:    "alice",
		Timestamp: "2024-01-02",
	}
}

func TestPostRepository_CreateGetRoundTrip(t *testing.T) {
	repo := newPostRepo(t)
	ctx := context.Background()

	post := samplePost("T")
	require.NoError(t, repo.CreatePost(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, post, got)
}

func TestPostRepository_ListInInsertionOrder(t *testing.T) {
	repo := newPostRepo(t)
	ctx := context.Background()

	empty, err := repo.GetAllPosts(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.CreatePost(ctx, samplePost(title)))
	}

	posts, err := repo.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	require.Equal(t, "first", posts[0].Title)
	require.Equal(t, "second", posts[1].Title)
	require.Equal(t, "third", posts[2].Title)
}

func TestPostRepository_UpdateTouchesTitleAndContentOnly(t *testing.T) {
	repo := newPostRepo(t)
	ctx := context.Background()

	post := samplePost("T")
	require.NoError(t, repo.CreatePost(ctx, post))

	updated, err := repo.UpdatePost(ctx, post.ID, "T2", "C2")
	require.NoError(t, err)
	require.Equal(t, "T2", updated.Title)
	require.Equal(t, "C2", updated.Content)
	require.Equal(t, post.ImageURL, updated.ImageURL)
	require.Equal(t, post.Author, updated.Author)
	require.Equal(t, post.Timestamp, updated.Timestamp)

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)
}

func TestPostRepository_MissingPost(t *testing.T) {
	repo := newPostRepo(t)
	ctx := context.Background()

	got, err := repo.GetPostByID(ctx, 42)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = repo.UpdatePost(ctx, 42, "x", "y")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, repo.DeletePost(ctx, 42), repository.ErrNotFound)

	posts, err := repo.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestPostRepository_Delete(t *testing.T) {
	repo := newPostRepo(t)
	ctx := context.Background()

	post := samplePost("T")
	require.NoError(t, repo.CreatePost(ctx, post))
	require.NoError(t, repo.DeletePost(ctx, post.ID))

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	require.ErrorIs(t, repo.DeletePost(ctx, post.ID), repository.ErrNotFound)
}
