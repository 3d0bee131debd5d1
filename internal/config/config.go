package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort string `envconfig:"SERVER_PORT" default:"5000"`

	// Database (PostgreSQL)
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"mylibrary"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	// Secret field WITHOUT an envconfig tag; loaded via loadSecret below.
	DBPassword string

	// Redis (revoked-token denylist)
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	// Secret field WITHOUT an envconfig tag.
	RedisPassword string

	// JWT settings. Secret field WITHOUT an envconfig tag; the process
	// refuses to start when it cannot be resolved.
	JWTSecret  string
	JWTIssuer  string        `envconfig:"JWT_ISSUER" default:"mylibrary-server"`
	TokenTTL   time.Duration `envconfig:"JWT_TOKEN_TTL" default:"24h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"12"`

	// CORS settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// IsProd reports whether the service runs in production mode.
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		if err := godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Required secrets. A missing JWT secret is a startup failure, not a
	// runtime fallback.
	var err error
	cfg.JWTSecret, err = loadSecret("JWT_SECRET", "jwt_secret")
	if err != nil {
		return nil, fmt.Errorf("JWT signing secret is not configured: %w", err)
	}

	cfg.DBPassword, err = loadSecret("DB_PASSWORD", "db_password")
	if err != nil {
		return nil, fmt.Errorf("database password is not configured: %w", err)
	}

	// Optional secrets.
	if redisPass, err := loadSecret("REDIS_PASSWORD", "redis_password"); err == nil {
		cfg.RedisPassword = redisPass
	}

	return &cfg, nil
}

// loadSecret resolves a secret from the environment first, then from the
// Docker secrets path.
func loadSecret(envName, secretName string) (string, error) {
	if v := os.Getenv(envName); v != "" {
		return v, nil
	}
	return readSecretFile(secretName)
}

// readSecretFile reads a secret from the standard Docker secrets location.
func readSecretFile(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
