package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetAllPosts(ctx context.Context) ([]*models.Post, error)
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, title, content string) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type postRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPostRepository(db *sqlx.DB, logger *zap.Logger) PostRepository {
	return &postRepository{db: db, logger: logger}
}

const postColumns = `id, title, content, image_url, author, timestamp`

func (r *postRepository) CreatePost(ctx context.Context, post *models.Post) error {
	query := r.db.Rebind(`INSERT INTO posts (title, content, image_url, author, timestamp)
	          VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		post.Title, post.Content, post.ImageURL, post.Author, post.Timestamp).Scan(&post.ID)
	if err != nil {
		r.logger.Error("Failed to create post", zap.Error(err))
		return err
	}
	return nil
}

// GetAllPosts returns every post in insertion order. The result is never nil.
func (r *postRepository) GetAllPosts(ctx context.Context) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	err := r.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to get all posts", zap.Error(err))
		return nil, err
	}
	return posts, nil
}

// GetPostByID returns nil, nil when the post does not exist.
func (r *postRepository) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	err := r.db.GetContext(ctx, &post, r.db.Rebind(`SELECT `+postColumns+` FROM posts WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get post by ID", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &post, nil
}

// UpdatePost sets title and content only; the other fields are left as stored.
func (r *postRepository) UpdatePost(ctx context.Context, id int64, title, content string) (*models.Post, error) {
	var post models.Post
	query := r.db.Rebind(`UPDATE posts SET title = ?, content = ? WHERE id = ? RETURNING ` + postColumns)
	err := r.db.GetContext(ctx, &post, query, title, content, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		r.logger.Error("Failed to update post", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) DeletePost(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		r.logger.Error("Failed to delete post", zap.Int64("id", id), zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return nil
}
