package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"blog-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	allPostsKey   = "posts:all"
	generationKey = "posts:gen"
	postKeyPrefix = "posts:"
)

// PostCache is a read-through cache in front of the post store.
// A miss is reported as (nil, false, nil).
//
// Readers take Generation before loading from the store and pass it to
// SetAll/Set; a fill is dropped when a write invalidated the cache in
// between, so a slow reader cannot put back data older than that write.
type PostCache interface {
	Generation(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]*models.Post, bool, error)
	SetAll(ctx context.Context, gen int64, posts []*models.Post) error
	Get(ctx context.Context, id int64) (*models.Post, bool, error)
	Set(ctx context.Context, gen int64, post *models.Post) error
	// Invalidate bumps the generation and drops the post list and the given posts.
	Invalidate(ctx context.Context, ids ...int64) error
	Close() error
}

// NewRedisClient returns a configured go-redis client from URL (e.g., redis://localhost:6379/0).
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// New returns a redis-backed cache, or a no-op cache when redisURL is empty.
func New(redisURL string, ttl time.Duration) (PostCache, error) {
	if redisURL == "" {
		return NopPostCache{}, nil
	}
	client, err := NewRedisClient(redisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisPostCache(client, ttl), nil
}

type RedisPostCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPostCache(client *redis.Client, ttl time.Duration) *RedisPostCache {
	return &RedisPostCache{client: client, ttl: ttl}
}

func postKey(id int64) string {
	return postKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *RedisPostCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisPostCache) GetAll(ctx context.Context) ([]*models.Post, bool, error) {
	var posts []*models.Post
	ok, err := c.getJSON(ctx, allPostsKey, &posts)
	if !ok || err != nil {
		return nil, false, err
	}
	if posts == nil {
		posts = make([]*models.Post, 0)
	}
	return posts, true, nil
}

func (c *RedisPostCache) SetAll(ctx context.Context, gen int64, posts []*models.Post) error {
	return c.setJSON(ctx, gen, allPostsKey, posts)
}

func (c *RedisPostCache) Get(ctx context.Context, id int64) (*models.Post, bool, error) {
	var post models.Post
	ok, err := c.getJSON(ctx, postKey(id), &post)
	if !ok || err != nil {
		return nil, false, err
	}
	return &post, true, nil
}

func (c *RedisPostCache) Set(ctx context.Context, gen int64, post *models.Post) error {
	return c.setJSON(ctx, gen, postKey(post.ID), post)
}

func (c *RedisPostCache) Invalidate(ctx context.Context, ids ...int64) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, allPostsKey)
	for _, id := range ids {
		keys = append(keys, postKey(id))
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	return err
}

func (c *RedisPostCache) Close() error {
	return c.client.Close()
}

func (c *RedisPostCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// setJSON stores v under key only while the generation is still gen.
func (c *RedisPostCache) setJSON(ctx context.Context, gen int64, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		// Invalidated while filling; the data may already be stale.
		return nil
	}
	return err
}

// NopPostCache never hits and never fails.
type NopPostCache struct{}

func (NopPostCache) Generation(context.Context) (int64, error) { return 0, nil }

func (NopPostCache) GetAll(context.Context) ([]*models.Post, bool, error) { return nil, false, nil }

func (NopPostCache) SetAll(context.Context, int64, []*models.Post) error { return nil }

func (NopPostCache) Get(context.Context, int64) (*models.Post, bool, error) { return nil, false, nil }

func (NopPostCache) Set(context.Context, int64, *models.Post) error { return nil }

func (NopPostCache) Invalidate(context.Context, ...int64) error { return nil }

func (NopPostCache) Close() error { return nil }
