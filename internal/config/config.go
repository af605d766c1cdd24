package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath       = "configs/config.yml"
	MinBcryptCost     = 10
	defaultPort       = "5500"
	defaultDriver     = "sqlite"
	defaultSQLitePath = "./data/blog.db"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port          string `yaml:"port"`
		Mode          string `yaml:"mode"`           // gin mode: debug, release, test
		AllowedOrigin string `yaml:"allowed_origin"` // CORS origin, "*" by default
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"` // "postgres" or "sqlite"
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret    string `yaml:"jwt_secret"`
		PasswordHash string `yaml:"password_hash"` // "bcrypt" or "argon2id"
		BcryptCost   int    `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Cache struct {
		RedisURL   string `yaml:"redis_url"` // empty disables the post cache
		TTLSeconds int64  `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// LoadConfig reads configuration from the specified YAML file, then applies
// environment overrides and defaults. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	switch {
	case err == nil:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	setFromEnv(&c.Server.Port, "PORT")
	setFromEnv(&c.Server.Mode, "GIN_MODE")
	setFromEnv(&c.Server.AllowedOrigin, "ALLOWED_ORIGIN")
	setFromEnv(&c.Database.Driver, "DATABASE_DRIVER")
	setFromEnv(&c.Database.URL, "DATABASE_URL")
	setFromEnv(&c.Auth.JWTSecret, "JWT_SECRET")
	setFromEnv(&c.Auth.PasswordHash, "PASSWORD_HASH")
	setFromEnv(&c.Cache.RedisURL, "REDIS_URL")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		c.Auth.BcryptCost = cost
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = defaultDriver
	}
	if c.Database.URL == "" && c.Database.Driver == "sqlite" {
		c.Database.URL = defaultSQLitePath
	}
	if c.Auth.PasswordHash == "" {
		c.Auth.PasswordHash = "bcrypt"
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = MinBcryptCost
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is not set; refusing to sign tokens with a default secret")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode %q", c.Server.Mode)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("database.url (DATABASE_URL) is not set")
	}
	switch c.Auth.PasswordHash {
	case "bcrypt":
		if c.Auth.BcryptCost < MinBcryptCost {
			return fmt.Errorf("auth.bcrypt_cost must be at least %d, got %d", MinBcryptCost, c.Auth.BcryptCost)
		}
	case "argon2id":
	default:
		return fmt.Errorf("unsupported password hash %q", c.Auth.PasswordHash)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must not be negative, got %d", c.Cache.TTLSeconds)
	}
	return nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// String returns a representation safe for logs; secrets are masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{port: %s, db: %s, hash: %s, cache: %t, log: %s, jwt_secret: ***}",
		c.Server.Port, c.Database.Driver, c.Auth.PasswordHash, c.Cache.RedisURL != "", c.Log.Level)
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
