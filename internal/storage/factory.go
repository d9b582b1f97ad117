package storage

import (
	"fmt"
	"strings"
	"time"

	"wedding-site/internal/domain"
)

// StorageType names a counter backend
type StorageType string

const (
	RedisStorageType  StorageType = "redis"
	MemoryStorageType StorageType = "memory"
)

// StorageConfig selects and parameterises a backend
type StorageConfig struct {
	Type            StorageType
	CleanupInterval time.Duration
	RedisConfig     *RedisConfig
}

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	Database int
}

// StorageFactory builds counter stores; call sites only see the interface
type StorageFactory struct{}

func NewStorageFactory() *StorageFactory {
	return &StorageFactory{}
}

// CreateStorage builds the backend named by config
func (f *StorageFactory) CreateStorage(config *StorageConfig, logger domain.Logger) (domain.RateLimiterStorage, error) {
	if err := f.ValidateConfig(config); err != nil {
		return nil, err
	}

	switch StorageType(strings.ToLower(string(config.Type))) {
	case RedisStorageType:
		rc := config.RedisConfig
		storage, err := NewRedisStorage(rc.Host, rc.Port, rc.Password, rc.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis storage: %w", err)
		}
		return storage, nil
	default:
		return NewMemoryStorage(logger, config.CleanupInterval), nil
	}
}

// GetSupportedTypes lists the available backends
func (f *StorageFactory) GetSupportedTypes() []StorageType {
	return []StorageType{RedisStorageType, MemoryStorageType}
}

// ValidateConfig checks config without connecting anywhere
func (f *StorageFactory) ValidateConfig(config *StorageConfig) error {
	if config == nil {
		return fmt.Errorf("storage config cannot be nil")
	}

	switch StorageType(strings.ToLower(string(config.Type))) {
	case RedisStorageType:
		return f.validateRedisConfig(config.RedisConfig)
	case MemoryStorageType:
		return nil
	default:
		return fmt.Errorf("unsupported storage type: %s (supported: %v)", config.Type, f.GetSupportedTypes())
	}
}

func (f *StorageFactory) validateRedisConfig(config *RedisConfig) error {
	if config == nil {
		return fmt.Errorf("redis config cannot be nil")
	}
	if config.Host == "" {
		return fmt.Errorf("redis host cannot be empty")
	}
	if config.Port == "" {
		return fmt.Errorf("redis port cannot be empty")
	}
	if config.Database < 0 || config.Database > 15 {
		return fmt.Errorf("redis database must be between 0 and 15, got: %d", config.Database)
	}
	return nil
}

// BuildStorageConfig maps flat settings onto a StorageConfig
func BuildStorageConfig(storageType, redisHost, redisPort, redisPassword string, redisDB int, cleanupInterval time.Duration) *StorageConfig {
	config := &StorageConfig{
		Type:            StorageType(strings.ToLower(storageType)),
		CleanupInterval: cleanupInterval,
	}

	if config.Type == RedisStorageType {
		config.RedisConfig = &RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: redisPassword,
			Database: redisDB,
		}
	}

	return config
}

type storageEventLogger interface {
	LogStorageEvent(operation string, key string, latency float64, err error)
}

// logStorageEvent reports one backend round trip, latency in milliseconds
func logStorageEvent(logger domain.Logger, operation, key string, start time.Time, err error) {
	if logger == nil {
		return
	}

	latency := time.Since(start).Seconds() * 1000
	if events, ok := logger.(storageEventLogger); ok {
		events.LogStorageEvent(operation, key, latency, err)
		return
	}

	fields := map[string]interface{}{
		"operation": operation,
		"key":       key,
		"latency":   latency,
	}
	if err != nil {
		logger.Error("Storage operation failed", err, fields)
		return
	}
	logger.Debug("Storage operation completed", fields)
}
