// Package config loads and validates application configuration from
// environment variables. Loading collects every problem it finds and reports
// them as a single error, so a misconfigured deployment fails fast with a
// complete list instead of one variable at a time.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DBConfig holds connection settings for the Postgres pool.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
}

// DSN renders the pool connection string.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}

// AuthConfig holds token-signing settings. Access and refresh tokens use
// independent secrets and expiry windows.
type AuthConfig struct {
	AccessTokenSecret    string
	RefreshTokenSecret   string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// MediaConfig holds settings for the S3-compatible image store.
type MediaConfig struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB     *DBConfig
	Auth   *AuthConfig
	Media  *MediaConfig
	Server *ServerConfig
}

// getRequiredEnv returns the value of key, recording an error if unset.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv returns the value of key or defaultValue if unset.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt parses key as an int, recording an error and returning
// defaultValue if the value is not an integer.
func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvDuration parses key as a time.Duration ("15m", "168h"),
// recording an error and returning defaultValue if the value does not parse.
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// LoadConfig reads and validates all configuration from the environment.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	dbConfig := &DBConfig{
		Host:     getOptionalEnv("DB_HOST", "localhost"),
		Port:     getOptionalEnvInt("DB_PORT", 5432, &errs),
		User:     getRequiredEnv("DB_USER", &errs),
		Password: getRequiredEnv("DB_PASSWORD", &errs),
		Name:     getRequiredEnv("DB_NAME", &errs),
		MaxConns: getOptionalEnvInt("DB_POOL_SIZE", 10, &errs),
	}
	if dbConfig.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("DB_POOL_SIZE must be at least 1, got %d", dbConfig.MaxConns))
	}

	authConfig := &AuthConfig{
		AccessTokenSecret:    getRequiredEnv("ACCESS_TOKEN_SECRET", &errs),
		RefreshTokenSecret:   getRequiredEnv("REFRESH_TOKEN_SECRET", &errs),
		AccessTokenDuration:  getOptionalEnvDuration("ACCESS_TOKEN_DURATION", 15*time.Minute, &errs),
		RefreshTokenDuration: getOptionalEnvDuration("REFRESH_TOKEN_DURATION", 168*time.Hour, &errs), // 7 days
	}
	if authConfig.AccessTokenSecret != "" && authConfig.AccessTokenSecret == authConfig.RefreshTokenSecret {
		errs = append(errs, "ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	mediaConfig := &MediaConfig{
		Endpoint:      getRequiredEnv("MEDIA_S3_ENDPOINT", &errs),
		Region:        getOptionalEnv("MEDIA_S3_REGION", "us-east-1"),
		Bucket:        getRequiredEnv("MEDIA_S3_BUCKET", &errs),
		AccessKey:     getRequiredEnv("MEDIA_S3_ACCESS_KEY", &errs),
		SecretKey:     getRequiredEnv("MEDIA_S3_SECRET_KEY", &errs),
		PublicBaseURL: getOptionalEnv("MEDIA_PUBLIC_BASE_URL", ""),
	}
	// When no CDN or public alias is configured, objects are addressed
	// directly through the storage endpoint.
	if mediaConfig.PublicBaseURL == "" {
		mediaConfig.PublicBaseURL = mediaConfig.Endpoint
	}

	serverConfig := &ServerConfig{
		Port: getOptionalEnv("PORT", "8080"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB:     dbConfig,
		Auth:   authConfig,
		Media:  mediaConfig,
		Server: serverConfig,
	}, nil
}
