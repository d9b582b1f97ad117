package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"wedding-site/internal/domain"

	"github.com/joho/godotenv"
)

// Config holds every setting of the application
type Config struct {
	// Server
	ServerPort string
	GinMode    string
	SiteURL    string

	// Logging
	LogLevel  string
	LogFormat string

	// Database
	DatabasePath string

	// Rate limiting
	StorageType        string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	RSVPRateLimit      int
	GuestbookRateLimit int
	RateWindow         time.Duration
	CleanupInterval    time.Duration

	// Edit links
	EditTokenTTL time.Duration

	// Admin sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Outbound email
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      string
	EmailFrom    string

	// Misc
	IPHashSalt       string
	SeedFile         string
	SeedOnStart      bool
	SettingsCacheTTL time.Duration
}

// ConfigLoader reads configuration from .env and the process environment
type ConfigLoader struct {
	config *Config
}

// NewConfigLoader creates a new loader
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// LoadConfig loads and validates the configuration
func (c *ConfigLoader) LoadConfig() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	config, err := c.loadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	if err := c.validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c.config = config
	return config, nil
}

// GetConfig returns the last loaded configuration
func (c *ConfigLoader) GetConfig() *Config {
	return c.config
}

// RateLimitRules derives the per-endpoint limiter rules
func (c *Config) RateLimitRules() map[domain.RateLimitScope]domain.RateLimitRule {
	return map[domain.RateLimitScope]domain.RateLimitRule{
		domain.RSVPScope: {
			Scope:       domain.RSVPScope,
			Limit:       c.RSVPRateLimit,
			Window:      c.RateWindow,
			Description: "RSVP form submissions per client",
		},
		domain.GuestbookScope: {
			Scope:       domain.GuestbookScope,
			Limit:       c.GuestbookRateLimit,
			Window:      c.RateWindow,
			Description: "Guestbook submissions per client",
		},
	}
}

// SMTPEnabled reports whether outbound email is configured
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func (c *ConfigLoader) loadFromEnv() (*Config, error) {
	config := &Config{
		ServerPort: getEnvWithDefault("SERVER_PORT", "8080"),
		GinMode:    getEnvWithDefault("GIN_MODE", "debug"),
		SiteURL:    strings.TrimRight(getEnvWithDefault("SITE_URL", "http://localhost:3000"), "/"),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "json"),

		DatabasePath: getEnvWithDefault("DATABASE_PATH", "data/wedding.db"),

		StorageType:   strings.ToLower(getEnvWithDefault("STORAGE_TYPE", "memory")),
		RedisHost:     getEnvWithDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvWithDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvWithDefault("REDIS_PASSWORD", ""),

		SessionSecret: os.Getenv("SESSION_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPTLS:      strings.ToLower(getEnvWithDefault("SMTP_TLS", "mandatory")),
		EmailFrom:    getEnvWithDefault("EMAIL_FROM", "noreply@boda.com"),

		IPHashSalt: getEnvWithDefault("IP_HASH_SALT", ""),
		SeedFile:   os.Getenv("SEED_FILE"),
	}

	var err error
	if config.RedisDB, err = getIntEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if config.RSVPRateLimit, err = getIntEnv("RSVP_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if config.GuestbookRateLimit, err = getIntEnv("GUESTBOOK_RATE_LIMIT", 3); err != nil {
		return nil, err
	}
	if config.SMTPPort, err = getIntEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}

	window, err := getIntEnv("RATE_WINDOW", 60)
	if err != nil {
		return nil, err
	}
	config.RateWindow = time.Duration(window) * time.Second

	cleanup, err := getIntEnv("CLEANUP_INTERVAL", 60)
	if err != nil {
		return nil, err
	}
	config.CleanupInterval = time.Duration(cleanup) * time.Second

	ttlDays, err := getIntEnv("EDIT_TOKEN_TTL_DAYS", 30)
	if err != nil {
		return nil, err
	}
	config.EditTokenTTL = time.Duration(ttlDays) * 24 * time.Hour

	sessionHours, err := getIntEnv("SESSION_TTL_HOURS", 720)
	if err != nil {
		return nil, err
	}
	config.SessionTTL = time.Duration(sessionHours) * time.Hour

	cacheTTL, err := getIntEnv("SETTINGS_CACHE_TTL", 60)
	if err != nil {
		return nil, err
	}
	config.SettingsCacheTTL = time.Duration(cacheTTL) * time.Second

	if config.SeedOnStart, err = getBoolEnv("SEED_ON_START", false); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *ConfigLoader) validateConfig(config *Config) error {
	if config.RSVPRateLimit <= 0 {
		return fmt.Errorf("RSVP_RATE_LIMIT must be greater than 0")
	}
	if config.GuestbookRateLimit <= 0 {
		return fmt.Errorf("GUESTBOOK_RATE_LIMIT must be greater than 0")
	}
	if config.RateWindow <= 0 {
		return fmt.Errorf("RATE_WINDOW must be greater than 0")
	}
	if config.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be greater than 0")
	}
	if config.EditTokenTTL <= 0 {
		return fmt.Errorf("EDIT_TOKEN_TTL_DAYS must be greater than 0")
	}
	if config.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be greater than 0")
	}
	if len(config.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	if config.StorageType != "memory" && config.StorageType != "redis" {
		return fmt.Errorf("STORAGE_TYPE must be 'memory' or 'redis'")
	}
	if config.RedisDB < 0 || config.RedisDB > 15 {
		return fmt.Errorf("REDIS_DB must be between 0 and 15")
	}
	switch config.SMTPTLS {
	case "mandatory", "opportunistic", "none":
	default:
		return fmt.Errorf("SMTP_TLS must be one of: mandatory, opportunistic, none")
	}
	if config.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}
