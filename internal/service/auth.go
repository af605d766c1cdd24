package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog-backend/internal/models"
	"blog-backend/internal/repository"

	"go.uber.org/zap"
)

var ( // Define custom errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Token     string
	Role      models.Role
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type authService struct {
	repo   repository.AuthRepository
	hasher PasswordHasher
	tokens *TokenService
	logger *zap.Logger
}

func NewAuthService(repo repository.AuthRepository, hasher PasswordHasher, tokens *TokenService, logger *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

func normalizeUsername(username string) string {
	return strings.TrimSpace(Sanitize(username))
}

func (s *authService) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	username = normalizeUsername(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	userRole, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	existing, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         userRole,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = normalizeUsername(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user == nil || !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("User logged in successfully.", zap.String("username", user.Username))
	return &LoginResult{Token: token, Role: user.Role, ExpiresAt: expiresAt}, nil
}
