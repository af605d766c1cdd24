package testutil

import (
	"testing"
	"time"

	"blog-backend/internal/models"
	"blog-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// OpenInMemoryDB opens a private in-memory SQLite database with all
// migrations applied. It is closed when the test ends.
func OpenInMemoryDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repository.NewDB(repository.DriverSQLite, ":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := repository.MigrateDB(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// GenerateJWTHS256 returns a token signed with secret whose expiry is expiresAt.
func GenerateJWTHS256(t *testing.T, secret, username string, role models.Role, expiresAt time.Time) string {
	t.Helper()
	claims := &models.Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-24 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}
