package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"wedding-site/internal/domain"
)

const publicSettingsKey = "public"

// SettingsService serves site settings. The public map is read on every page
// so it is kept in a short-lived cache that writes invalidate.
type SettingsService struct {
	repo   domain.SettingsRepository
	logger domain.Logger
	cache  *expirable.LRU[string, map[string]string]
}

func NewSettingsService(repo domain.SettingsRepository, logger domain.Logger, cacheTTL time.Duration) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: logger,
		cache:  expirable.NewLRU[string, map[string]string](1, nil, cacheTTL),
	}
}

// Public returns every setting as key to value
func (s *SettingsService) Public(ctx context.Context) (map[string]string, error) {
	if cached, ok := s.cache.Get(publicSettingsKey); ok {
		return copySettings(cached), nil
	}

	settings, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}
	s.cache.Add(publicSettingsKey, values)

	return copySettings(values), nil
}

// All returns the settings with their descriptions
func (s *SettingsService) All(ctx context.Context) ([]*domain.Setting, error) {
	return s.repo.All(ctx)
}

// Save upserts every key of values, stringifying the values
func (s *SettingsService) Save(ctx context.Context, values map[string]interface{}) error {
	defer s.cache.Purge()

	for key, value := range values {
		if key == "" {
			continue
		}
		if err := s.repo.Upsert(ctx, key, stringifySetting(value)); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	s.logger.WithContext(ctx).Info("Settings saved", map[string]interface{}{
		"keys": len(values),
	})
	return nil
}

// Count returns how many settings exist
func (s *SettingsService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func stringifySetting(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; keep integers free of exponents
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}

func copySettings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
