package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the main configuration for Reelhouse
type Config struct {
	Server   ServerConfig   `json:"server"`
	Log      LogConfig      `json:"log"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	HTTP     HTTPConfig     `json:"http"`
	Features FeatureConfig  `json:"features"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port            int           `json:"port"`
	Host            string        `json:"host"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Store drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// DatabaseConfig selects the catalog backing store
type DatabaseConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
}

// AuthConfig contains the seeded administrator account
type AuthConfig struct {
	AdminUsername string `json:"admin_username"`
	AdminPassword string `json:"-"`
}

// HTTPConfig contains transport policies applied at the router
type HTTPConfig struct {
	CORSAllowedOrigins []string      `json:"cors_allowed_origins"`
	RateLimitRequests  int           `json:"rate_limit_requests"`
	RateLimitWindow    time.Duration `json:"rate_limit_window"`
}

// FeatureConfig contains feature-specific configuration
type FeatureConfig struct {
	Catalog   CatalogConfig   `json:"catalog"`
	Recommend RecommendConfig `json:"recommend"`
}

// CatalogConfig contains catalog feature configuration
type CatalogConfig struct {
	Enabled          bool          `json:"enabled"`
	SeedDemoData     bool          `json:"seed_demo_data"`
	DefaultVideoType string        `json:"default_video_type"`
	PopularInterval  time.Duration `json:"popular_interval"`
	PopularCount     int           `json:"popular_count"`
}

// RecommendConfig contains related-video scoring configuration
type RecommendConfig struct {
	CategoryWeight float64 `json:"category_weight"`
	TagWeight      float64 `json:"tag_weight"`
	Limit          int     `json:"limit"`
	MaxLimit       int     `json:"max_limit"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("REEL_PORT", 5000),
			Host:            getEnvOrDefault("REEL_HOST", "0.0.0.0"),
			ShutdownTimeout: getEnvAsDuration("REEL_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("REEL_LOG_LEVEL", "info"),
			Format: getEnvOrDefault("REEL_LOG_FORMAT", "text"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnvOrDefault("REEL_STORE", DriverMemory)),
			Path:   getEnvOrDefault("REEL_DB_PATH", "./reelhouse.db"),
		},
		Auth: AuthConfig{
			AdminUsername: getEnvOrDefault("REEL_ADMIN_USERNAME", "jscreator"),
			AdminPassword: getEnvOrDefault("REEL_ADMIN_PASSWORD", "admin123"),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: getEnvAsList("REEL_CORS_ORIGINS", []string{"*"}),
			RateLimitRequests:  getEnvAsInt("REEL_RATE_LIMIT_REQUESTS", 300),
			RateLimitWindow:    getEnvAsDuration("REEL_RATE_LIMIT_WINDOW", time.Minute),
		},
		Features: FeatureConfig{
			Catalog: CatalogConfig{
				Enabled:          getEnvAsBool("REEL_ENABLE_CATALOG", true),
				SeedDemoData:     getEnvAsBool("REEL_SEED", true),
				DefaultVideoType: getEnvOrDefault("REEL_DEFAULT_VIDEO_TYPE", "movie"),
				PopularInterval:  getEnvAsDuration("REEL_POPULAR_INTERVAL", 10*time.Minute),
				PopularCount:     getEnvAsInt("REEL_POPULAR_COUNT", 4),
			},
			Recommend: RecommendConfig{
				CategoryWeight: getEnvAsFloat("REEL_RECOMMEND_CATEGORY_WEIGHT", 10),
				TagWeight:      getEnvAsFloat("REEL_RECOMMEND_TAG_WEIGHT", 5),
				Limit:          getEnvAsInt("REEL_RECOMMEND_LIMIT", 5),
				MaxLimit:       getEnvAsInt("REEL_RECOMMEND_MAX_LIMIT", 20),
			},
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want %q or %q)", c.Database.Driver, DriverMemory, DriverSQLite)
	}

	if c.Auth.AdminUsername == "" {
		return fmt.Errorf("admin username is required")
	}

	if c.Auth.AdminPassword == "" {
		return fmt.Errorf("admin password is required")
	}

	if c.HTTP.RateLimitRequests > 0 && c.HTTP.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive when rate limiting is enabled")
	}

	rc := c.Features.Recommend
	if rc.CategoryWeight < 0 || rc.TagWeight < 0 {
		return fmt.Errorf("recommendation weights must not be negative")
	}
	if rc.Limit <= 0 {
		return fmt.Errorf("recommendation limit must be positive: %d", rc.Limit)
	}
	if rc.MaxLimit < rc.Limit {
		return fmt.Errorf("recommendation max limit (%d) is below the default limit (%d)", rc.MaxLimit, rc.Limit)
	}

	if c.Features.Catalog.DefaultVideoType == "" {
		return fmt.Errorf("default video type is required")
	}

	return nil
}

// IsFeatureEnabled checks if a feature is enabled
func (c *Config) IsFeatureEnabled(featureName string) bool {
	switch strings.ToLower(featureName) {
	case "catalog":
		return c.Features.Catalog.Enabled
	default:
		return false
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
