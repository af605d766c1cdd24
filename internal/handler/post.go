package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"blog-backend/internal/middleware"
	"blog-backend/internal/models"
	"blog-backend/internal/render"
	"blog-backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler interface {
	ListPosts(c *gin.Context)
	GetPost(c *gin.Context)
	ViewPost(c *gin.Context)
	CreatePost(c *gin.Context)
	UpdatePost(c *gin.Context)
	DeletePost(c *gin.Context)
}

type postHandler struct {
	postService service.PostService
	renderer    render.PostRenderer
	logger      *zap.Logger
}

func NewPostHandler(postService service.PostService, renderer render.PostRenderer, logger *zap.Logger) PostHandler {
	return &postHandler{
		postService: postService,
		renderer:    renderer,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
}

type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// requireAdmin writes 403 and reports false unless the caller is an admin.
func requireAdmin(c *gin.Context) bool {
	id, ok := middleware.CurrentIdentity(c)
	if !ok || !id.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return false
	}
	return true
}

// parsePostID reads the :id path parameter. Ids that cannot name a post
// are reported as not found.
func parsePostID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeContext keeps the request values but survives client disconnects,
// so an accepted write is not abandoned halfway.
func writeContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// ListPosts handles GET /posts
func (h *postHandler) ListPosts(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list posts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost handles GET /posts/:id
func (h *postHandler) GetPost(c *gin.Context) {
	id, ok := parsePostID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	post, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.logger.Error("Failed to get post", zap.Int64("post_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// ViewPost handles GET /post/:id and serves the rendered detail page.
func (h *postHandler) ViewPost(c *gin.Context) {
	id, ok := parsePostID(c)
	if !ok {
		c.String(http.StatusNotFound, "Post not found")
		return
	}

	post, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.String(http.StatusNotFound, "Post not found")
			return
		}
		h.logger.Error("Failed to get post", zap.Int64("post_id", id), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, post); err != nil {
		h.logger.Error("Failed to render post", zap.Int64("post_id", id), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// CreatePost handles POST /posts
func (h *postHandler) CreatePost(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data"})
		return
	}

	post, err := h.postService.CreatePost(writeContext(c), &models.Post{
		Title:     req.Title,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		Author:    req.Author,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		h.logger.Error("Failed to create post", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost handles PUT /posts/:id
func (h *postHandler) UpdatePost(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id, ok := parsePostID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data"})
		return
	}

	post, err := h.postService.UpdatePost(writeContext(c), id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.logger.Error("Failed to update post", zap.Int64("post_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /posts/:id
func (h *postHandler) DeletePost(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id, ok := parsePostID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := h.postService.DeletePost(writeContext(c), id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.logger.Error("Failed to delete post", zap.Int64("post_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
