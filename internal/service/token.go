package service

import (
	"errors"
	"fmt"
	"time"

	"blog-backend/internal/clock"
	"blog-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies HS256 identity tokens. There is no
// revocation list; rotating the secret invalidates every token.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenService(secret string, ttl time.Duration, clk clock.Clock) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, clock: clk}, nil
}

// Issue returns a signed token for the user and its expiration time.
func (s *TokenService) Issue(username string, role models.Role) (string, time.Time, error) {
	now := s.clock.Now()
	expirationTime := now.Add(s.ttl)
	claims := &models.Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// Verify checks signature, algorithm and expiry and returns the identity the
// token was issued for. Every failure wraps ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*models.Identity, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: missing username or unknown role", ErrInvalidToken)
	}

	return &models.Identity{Username: claims.Username, Role: claims.Role}, nil
}
