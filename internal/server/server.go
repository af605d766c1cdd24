package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"blog-backend/internal/cache"
	"blog-backend/internal/clock"
	"blog-backend/internal/config"
	"blog-backend/internal/handler"
	"blog-backend/internal/middleware"
	"blog-backend/internal/render"
	"blog-backend/internal/repository"
	"blog-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	router    *gin.Engine
	cfg       *config.Config
	db        *sqlx.DB
	postCache cache.PostCache
	tokens    *service.TokenService
	hasher    service.PasswordHasher
	renderer  render.PostRenderer
	logger    *zap.Logger
}

func NewServer(cfg *config.Config, db *sqlx.DB, postCache cache.PostCache, logger *zap.Logger, accessLog *logrus.Logger) (*Server, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, service.DefaultTokenTTL, clock.New())
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}
	hasher, err := service.NewPasswordHasher(cfg.Auth.PasswordHash, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	renderer, err := render.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("post renderer: %w", err)
	}
	if postCache == nil {
		postCache = cache.NopPostCache{}
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(accessLog),
		middleware.CORS(cfg.Server.AllowedOrigin),
	)

	// Initialize server with DB and Logger
	s := &Server{
		router:    router,
		cfg:       cfg,
		db:        db,
		postCache: postCache,
		tokens:    tokens,
		hasher:    hasher,
		renderer:  renderer,
		logger:    logger,
	}

	// Setup routes
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	// Initialize Auth components
	authRepo := repository.NewAuthRepository(s.db, s.logger)
	authService := service.NewAuthService(authRepo, s.hasher, s.tokens, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)

	// Initialize Post components
	postRepo := repository.NewPostRepository(s.db, s.logger)
	postService := service.NewPostService(postRepo, s.postCache, s.logger)
	postHandler := handler.NewPostHandler(postService, s.renderer, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	s.router.POST("/register", authHandler.Register)
	s.router.POST("/login", authHandler.Login)

	// Public post routes
	s.router.GET("/posts", postHandler.ListPosts)
	s.router.GET("/posts/:id", postHandler.GetPost)
	s.router.GET("/post/:id", postHandler.ViewPost)

	// Authenticated routes; handlers check the admin role
	authRequired := s.router.Group("/posts")
	authRequired.Use(middleware.AuthMiddleware(s.tokens, s.logger))
	{
		authRequired.POST("", postHandler.CreatePost)
		authRequired.PUT("/:id", postHandler.UpdatePost)
		authRequired.DELETE("/:id", postHandler.DeletePost)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("Server exited")
	return nil
}
