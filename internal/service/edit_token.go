package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"wedding-site/internal/domain"
	"wedding-site/internal/logger"
)

const (
	// DefaultEditTokenTTL is how long an edit link stays valid
	DefaultEditTokenTTL = 30 * 24 * time.Hour

	editTokenBytes = 32
)

// EditTokenService grants bearer access to a single RSVP through the token
// mailed to the guest.
type EditTokenService struct {
	repo   domain.RSVPRepository
	ttl    time.Duration
	logger domain.Logger
	now    func() time.Time
	random io.Reader
}

// EditTokenOption customises an EditTokenService
type EditTokenOption func(*EditTokenService)

// WithEditTokenClock replaces time.Now
func WithEditTokenClock(now func() time.Time) EditTokenOption {
	return func(s *EditTokenService) {
		s.now = now
	}
}

// WithRandomSource replaces crypto/rand as the token entropy source
func WithRandomSource(r io.Reader) EditTokenOption {
	return func(s *EditTokenService) {
		s.random = r
	}
}

// NewEditTokenService creates the service; a non-positive ttl means 30 days
func NewEditTokenService(repo domain.RSVPRepository, ttl time.Duration, logger domain.Logger, opts ...EditTokenOption) *EditTokenService {
	if ttl <= 0 {
		ttl = DefaultEditTokenTTL
	}
	s := &EditTokenService{
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueToken returns a fresh 256-bit URL-safe token and its expiry
func (s *EditTokenService) IssueToken() (string, time.Time, error) {
	buf := make([]byte, editTokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate edit token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), s.now().UTC().Add(s.ttl), nil
}

// Resolve finds the live RSVP holding token. It returns ErrTokenNotFound
// when nothing matches and ErrTokenExpired once the validity has passed.
func (s *EditTokenService) Resolve(ctx context.Context, token string) (*domain.RSVP, error) {
	if token == "" {
		return nil, domain.ErrTokenNotFound
	}

	rsvp, err := s.repo.GetByEditToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve edit token: %w", err)
	}

	if s.now().After(rsvp.TokenExpiresAt) {
		s.logger.Info("Expired edit token used", map[string]interface{}{
			"rsvp_id":    rsvp.ID,
			"token":      logger.MaskToken(token),
			"expired_at": rsvp.TokenExpiresAt,
		})
		return nil, domain.ErrTokenExpired
	}

	return rsvp, nil
}

// UpdateViaToken applies patch to the RSVP behind token. The token itself and
// its expiry are left untouched. Invalid patches are rejected before any write.
func (s *EditTokenService) UpdateViaToken(ctx context.Context, token string, patch *domain.RSVPPatch) (*domain.RSVP, error) {
	rsvp, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.ApplyPatch(ctx, rsvp, token, patch)
}

// ApplyPatch updates an RSVP already returned by Resolve for token. If a
// resubmission rotated the token in the meantime the write is dropped and
// ErrTokenNotFound is returned.
func (s *EditTokenService) ApplyPatch(ctx context.Context, rsvp *domain.RSVP, token string, patch *domain.RSVPPatch) (*domain.RSVP, error) {
	if err := Validator().Struct(patch); err != nil {
		return nil, err
	}

	updated := *rsvp
	patch.Apply(&updated)
	updated.UpdatedAt = s.now().UTC()

	err := s.repo.UpdateDetails(ctx, &updated, token)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Info("Edit token replaced before update", map[string]interface{}{
			"rsvp_id": rsvp.ID,
			"token":   logger.MaskToken(token),
		})
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update rsvp: %w", err)
	}

	s.logger.Info("RSVP updated via edit link", map[string]interface{}{
		"rsvp_id": rsvp.ID,
		"token":   logger.MaskToken(token),
	})

	return &updated, nil
}
