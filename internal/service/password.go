package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	HashBcrypt   = "bcrypt"
	HashArgon2id = "argon2id"

	// MaxBcryptPasswordBytes is the longest password bcrypt accepts.
	MaxBcryptPasswordBytes = 72
)

// PasswordHasher hashes new passwords with one algorithm and verifies
// hashes produced by any supported algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(encodedHash, password string) bool
}

func NewPasswordHasher(algorithm string, bcryptCost int) (PasswordHasher, error) {
	switch algorithm {
	case HashBcrypt:
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", bcryptCost)
		}
		return bcryptHasher{cost: bcryptCost}, nil
	case HashArgon2id:
		return defaultArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unsupported password hash %q", algorithm)
	}
}

type bcryptHasher struct {
	cost int
}

// Hash rejects passwords over MaxBcryptPasswordBytes with ErrInvalidInput
// rather than truncating them.
func (h bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, MaxBcryptPasswordBytes)
	}
	return string(b), err
}

func (h bcryptHasher) Compare(encodedHash, password string) bool {
	return verifyPassword(encodedHash, password)
}

type argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

func defaultArgon2Hasher() argon2Hasher {
	return argon2Hasher{time: 1, memory: 64 * 1024, threads: 4, keyLen: 32, saltLen: 16}
}

// Hash encodes as $argon2id$v=19$m=65536,t=1,p=4$BASE64_SALT$BASE64_HASH.
func (h argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.threads, h.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

func (h argon2Hasher) Compare(encodedHash, password string) bool {
	return verifyPassword(encodedHash, password)
}

// verifyPassword picks the algorithm from the hash prefix, so stored hashes
// stay valid when the configured algorithm changes.
func verifyPassword(encodedHash, password string) bool {
	if strings.HasPrefix(encodedHash, "$argon2id$") {
		return verifyArgon2id(encodedHash, password)
	}
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}

func verifyArgon2id(encodedHash, password string) bool {
	// ["", "argon2id", "v=19", "m=65536,t=1,p=4", salt, hash]
	sections := strings.Split(encodedHash, "$")
	if len(sections) != 6 {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(sections[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(sections[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(sections[5])
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, t, m, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
