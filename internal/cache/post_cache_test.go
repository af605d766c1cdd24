package cache

import (
	"context"
	"testing"
	"time"

	"blog-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisPostCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisPostCache(client, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisPostCache_MissThenHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)

	post := &models.Post{ID: 1, Title: "T", Content: "C", ImageURL: "U", Author: "alice", Timestamp: "D"}
	require.NoError(t, c.Set(ctx, 0, post))

	got, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, post, got)
}

func TestRedisPostCache_ListAndInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	posts := []*models.Post{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}
	require.NoError(t, c.SetAll(ctx, 0, posts))
	require.NoError(t, c.Set(ctx, 0, posts[0]))
	require.NoError(t, c.Set(ctx, 0, posts[1]))

	got, ok, err := c.GetAll(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, posts, got)

	require.NoError(t, c.Invalidate(ctx, 1))
	require.False(t, mr.Exists(allPostsKey))
	require.False(t, mr.Exists(postKey(1)))
	require.True(t, mr.Exists(postKey(2)))
}

func TestRedisPostCache_EmptyListIsAHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetAll(ctx, 0, []*models.Post{}))
	got, ok, err := c.GetAll(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestRedisPostCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, &models.Post{ID: 7}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, 7)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisPostCache_InvalidateBumpsGeneration(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.Zero(t, gen)

	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Invalidate(ctx, 3))

	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, gen)
}

func TestRedisPostCache_StaleFillIsDropped(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)

	// A write lands between the reader's store load and its fill.
	require.NoError(t, c.Invalidate(ctx, 1))

	require.NoError(t, c.SetAll(ctx, gen, []*models.Post{}))
	require.NoError(t, c.Set(ctx, gen, &models.Post{ID: 1, Title: "old"}))
	require.False(t, mr.Exists(allPostsKey))
	require.False(t, mr.Exists(postKey(1)))

	// A fill taken after the write is kept.
	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, gen, &models.Post{ID: 1, Title: "new"}))
	got, ok, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", got.Title)
}

func TestNew_EmptyURLIsNop(t *testing.T) {
	c, err := New("", time.Minute)
	require.NoError(t, err)
	require.IsType(t, NopPostCache{}, c)

	_, ok, err := c.GetAll(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNew_ConnectsToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New("redis://"+mr.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.IsType(t, &RedisPostCache{}, c)
}
