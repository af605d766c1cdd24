package service

import (
	"context"
	"errors"
	"fmt"

	"blog-backend/internal/cache"
	"blog-backend/internal/models"
	"blog-backend/internal/repository"

	"go.uber.org/zap"
)

var ErrPostNotFound = errors.New("post not found")

type PostService interface {
	ListPosts(ctx context.Context) ([]*models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, title, content string) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type postService struct {
	repo   repository.PostRepository
	cache  cache.PostCache
	logger *zap.Logger
}

func NewPostService(repo repository.PostRepository, postCache cache.PostCache, logger *zap.Logger) PostService {
	if postCache == nil {
		postCache = cache.NopPostCache{}
	}
	return &postService{repo: repo, cache: postCache, logger: logger}
}

func (s *postService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	if posts, ok, err := s.cache.GetAll(ctx); err != nil {
		s.logger.Warn("Post cache read failed", zap.Error(err))
	} else if ok {
		return posts, nil
	}

	gen, fill := s.generation(ctx)
	posts, err := s.repo.GetAllPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	if fill {
		if err := s.cache.SetAll(ctx, gen, posts); err != nil {
			s.logger.Warn("Post cache write failed", zap.Error(err))
		}
	}
	return posts, nil
}

func (s *postService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	if post, ok, err := s.cache.Get(ctx, id); err != nil {
		s.logger.Warn("Post cache read failed", zap.Int64("post_id", id), zap.Error(err))
	} else if ok {
		return post, nil
	}

	gen, fill := s.generation(ctx)
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	if fill {
		if err := s.cache.Set(ctx, gen, post); err != nil {
			s.logger.Warn("Post cache write failed", zap.Int64("post_id", id), zap.Error(err))
		}
	}
	return post, nil
}

// generation must be read before the store so a concurrent write
// invalidates the fill. When it cannot be read, the fill is skipped.
func (s *postService) generation(ctx context.Context) (int64, bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("Post cache generation read failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *postService) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Info("Post created", zap.Int64("post_id", post.ID), zap.String("author", post.Author))
	return post, nil
}

func (s *postService) UpdatePost(ctx context.Context, id int64, title, content string) (*models.Post, error) {
	post, err := s.repo.UpdatePost(ctx, id, title, content)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, id int64) error {
	if err := s.repo.DeletePost(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	s.invalidate(ctx, id)

	s.logger.Info("Post deleted", zap.Int64("post_id", id))
	return nil
}

func (s *postService) invalidate(ctx context.Context, ids ...int64) {
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn("Post cache invalidation failed", zap.Int64s("post_ids", ids), zap.Error(err))
	}
}
