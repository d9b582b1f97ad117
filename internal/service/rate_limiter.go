package service

import (
	"context"
	"fmt"
	"strings"

	"wedding-site/internal/domain"
)

// RateLimiterService applies the configured per-scope rules on top of a
// counter storage. Call sites only see domain.RateLimiterService, so the
// backing store can be swapped without touching them.
type RateLimiterService struct {
	storage domain.RateLimiterStorage
	rules   map[domain.RateLimitScope]domain.RateLimitRule
	logger  domain.Logger
}

// NewRateLimiterService creates the service
func NewRateLimiterService(
	storage domain.RateLimiterStorage,
	rules map[domain.RateLimitScope]domain.RateLimitRule,
	logger domain.Logger,
) *RateLimiterService {
	return &RateLimiterService{
		storage: storage,
		rules:   rules,
		logger:  logger,
	}
}

// Check counts one request of identifier against the rule of scope
func (s *RateLimiterService) Check(ctx context.Context, scope domain.RateLimitScope, identifier string) (*domain.RateLimitResult, error) {
	rule, ok := s.Rule(scope)
	if !ok {
		return nil, fmt.Errorf("no rate limit rule for scope %q", scope)
	}

	identifier = normalizeIdentifier(identifier)
	storageKey := s.buildStorageKey(scope, identifier)

	result, err := s.storage.Hit(ctx, storageKey, rule.Limit, rule.Window)
	if err != nil {
		s.logger.Error("Failed to check rate limit", err, map[string]interface{}{
			"storage_key": storageKey,
			"limit":       rule.Limit,
		})
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	result.Scope = scope

	if result.Allowed {
		s.logger.Debug("Request allowed", map[string]interface{}{
			"storage_key": storageKey,
			"limit":       result.Limit,
			"remaining":   result.Remaining,
		})
	} else {
		s.logger.Info("Rate limit exceeded", map[string]interface{}{
			"storage_key": storageKey,
			"limit":       result.Limit,
			"reset_at":    result.ResetAt,
		})
	}

	return result, nil
}

// Rule returns the rule configured for scope
func (s *RateLimiterService) Rule(scope domain.RateLimitScope) (*domain.RateLimitRule, bool) {
	rule, ok := s.rules[scope]
	if !ok {
		return nil, false
	}
	return &rule, true
}

// Rules lists every configured rule
func (s *RateLimiterService) Rules() []domain.RateLimitRule {
	rules := make([]domain.RateLimitRule, 0, len(s.rules))
	for _, scope := range []domain.RateLimitScope{domain.RSVPScope, domain.GuestbookScope} {
		if rule, ok := s.rules[scope]; ok {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Status returns the live counter of identifier, nil when it has none
func (s *RateLimiterService) Status(ctx context.Context, scope domain.RateLimitScope, identifier string) (*domain.RateLimitRecord, error) {
	if _, ok := s.rules[scope]; !ok {
		return nil, fmt.Errorf("no rate limit rule for scope %q", scope)
	}

	storageKey := s.buildStorageKey(scope, normalizeIdentifier(identifier))

	record, err := s.storage.Get(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return record, nil
}

// Reset clears the counter of identifier
func (s *RateLimiterService) Reset(ctx context.Context, scope domain.RateLimitScope, identifier string) error {
	if _, ok := s.rules[scope]; !ok {
		return fmt.Errorf("no rate limit rule for scope %q", scope)
	}

	storageKey := s.buildStorageKey(scope, normalizeIdentifier(identifier))

	if err := s.storage.Reset(ctx, storageKey); err != nil {
		return fmt.Errorf("failed to reset key: %w", err)
	}

	s.logger.Info("Rate limit reset", map[string]interface{}{
		"scope":       scope,
		"identifier":  identifier,
		"storage_key": storageKey,
	})

	return nil
}

// normalizeIdentifier maps an empty client address onto a shared bucket
func normalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "unknown"
	}
	return identifier
}

func (s *RateLimiterService) buildStorageKey(scope domain.RateLimitScope, identifier string) string {
	return fmt.Sprintf("rate_limit:%s:%s", scope, identifier)
}
