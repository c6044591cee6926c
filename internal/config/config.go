// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database     DatabaseConfig
	Server       ServerConfig
	Logging      LoggingConfig
	CORS         CORSConfig
	JWT          JWTConfig
	SMTP         SMTPConfig
	Upload       UploadConfig
	DefaultAdmin DefaultAdminConfig
	BcryptRounds int
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	Timeout  time.Duration
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port        int
	APIVersion  string
	Environment string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration.
// Access and refresh tokens are signed with distinct secrets.
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
}

// UploadConfig holds file upload settings
type UploadConfig struct {
	Path        string
	MaxFileSize int64
	MaxFiles    int
}

// DefaultAdminConfig holds the account seeded on first start
type DefaultAdminConfig struct {
	Email    string
	Password string
	Name     string
}

const (
	defaultAccessExpiry  = "7d"
	defaultRefreshExpiry = "30d"
	defaultBcryptRounds  = 12
	defaultMaxFileSize   = 5 * 1024 * 1024
	defaultMaxFiles      = 5
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// Database configuration
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	if cfg.Database.Port, err = getEnvInt("DB_PORT", 3306); err != nil {
		return nil, err
	}
	cfg.Database.User = getEnv("DB_USER", "root")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Database.DBName = getEnv("DB_NAME", "portfolio_cms")
	cfg.Database.Timeout = 60 * time.Second

	// Server configuration
	if cfg.Server.Port, err = getEnvInt("PORT", 5000); err != nil {
		return nil, err
	}
	cfg.Server.APIVersion = getEnv("API_VERSION", "v1")
	cfg.Server.Environment = getEnv("NODE_ENV", "development")

	// Logging configuration
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.RefreshSecret = os.Getenv("JWT_REFRESH_SECRET")
	if cfg.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	if cfg.JWT.RefreshSecret == cfg.JWT.Secret {
		return nil, fmt.Errorf("JWT_REFRESH_SECRET must differ from JWT_SECRET")
	}

	if cfg.JWT.AccessTokenExpiry, err = ParseExpiry(getEnv("JWT_EXPIRE", defaultAccessExpiry)); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRE: %w", err)
	}
	if cfg.JWT.RefreshTokenExpiry, err = ParseExpiry(getEnv("JWT_REFRESH_EXPIRE", defaultRefreshExpiry)); err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRE: %w", err)
	}

	// Password hashing cost
	if cfg.BcryptRounds, err = getEnvInt("BCRYPT_ROUNDS", defaultBcryptRounds); err != nil {
		return nil, err
	}
	if cfg.BcryptRounds < 4 || cfg.BcryptRounds > 31 {
		return nil, fmt.Errorf("invalid BCRYPT_ROUNDS: must be between 4 and 31")
	}

	// Upload configuration
	cfg.Upload.Path = getEnv("UPLOAD_PATH", "uploads")
	maxFileSize, err := getEnvInt("MAX_FILE_SIZE", defaultMaxFileSize)
	if err != nil {
		return nil, err
	}
	if maxFileSize <= 0 {
		return nil, fmt.Errorf("invalid MAX_FILE_SIZE: must be positive")
	}
	cfg.Upload.MaxFileSize = int64(maxFileSize)
	cfg.Upload.MaxFiles = defaultMaxFiles

	// SMTP configuration (optional, email is disabled without a host)
	cfg.SMTP.Host = os.Getenv("SMTP_HOST")
	if cfg.SMTP.Port, err = getEnvInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USER")
	cfg.SMTP.Password = os.Getenv("SMTP_PASS")
	cfg.SMTP.From = getEnv("FROM_EMAIL", "noreply@portfolio.com")
	cfg.SMTP.AdminEmail = os.Getenv("ADMIN_EMAIL")

	// Seeded super admin
	cfg.DefaultAdmin.Email = getEnv("DEFAULT_ADMIN_EMAIL", "admin@portfolio.com")
	cfg.DefaultAdmin.Password = getEnv("DEFAULT_ADMIN_PASSWORD", "Admin123!@#")
	cfg.DefaultAdmin.Name = getEnv("DEFAULT_ADMIN_NAME", "Super Admin")

	return cfg, nil
}

// DSN returns the database connection string.
// clientFoundRows makes UPDATE report matched rows, so a no-op update is not a missing row.
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}
	timeout := c.Database.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true&timeout=%s&readTimeout=%s&writeTimeout=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		timeout, timeout, timeout,
	)
}

// IsDevelopment reports whether error details may be exposed to clients
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ParseExpiry parses token lifetimes such as "7d", "2w", "12h" or "90m".
// Plain numbers are treated as seconds.
func ParseExpiry(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if n, err := strconv.Atoi(value); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(n) * time.Second, nil
	}

	unit := value[len(value)-1]
	if unit == 'd' || unit == 'w' {
		n, err := strconv.Atoi(value[:len(value)-1])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		day := 24 * time.Hour
		if unit == 'w' {
			return time.Duration(n) * 7 * day, nil
		}
		return time.Duration(n) * day, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// parseOrigins splits a comma-separated origin list
func parseOrigins(raw string) []string {
	if raw == "" {
		// Default to allow all origins if not specified (for development)
		return []string{"*"}
	}

	origins := strings.Split(raw, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			result = append(result, origin)
		}
	}
	// If no valid origins found, default to allow all
	if len(result) == 0 {
		return []string{"*"}
	}
	return result
}
