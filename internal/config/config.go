package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string

	// Bcrypt hash of the admin password gating destructive operations
	AdminPasswordHash string

	Database DatabaseConfig
	Remote   RemoteConfig
}

// DatabaseConfig holds local mirror database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// RemoteConfig holds the remote delivery-management API configuration
type RemoteConfig struct {
	BaseURL  string
	APIToken string
	Timeout  int // seconds
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		NodeEnv:           getEnv("NODE_ENV", "development"),
		Port:              getEnv("PORT", "3001"),
		JWTSecret:         jwtSecret,
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "livrex"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Remote: RemoteConfig{
			BaseURL:  getEnv("REMOTE_API_URL", "http://localhost:8080"),
			APIToken: os.Getenv("REMOTE_API_TOKEN"),
			Timeout:  getIntEnv("REMOTE_API_TIMEOUT", 30),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
