package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wedding-site/internal/domain"
)

// PublicGuestbookLimit caps the approved entries shown on the site
const PublicGuestbookLimit = 50

// GuestbookService stores guest messages for moderation
type GuestbookService struct {
	repo   domain.GuestbookRepository
	logger domain.Logger
	ipSalt string
	now    func() time.Time
	newID  func() string
}

func NewGuestbookService(repo domain.GuestbookRepository, logger domain.Logger, ipSalt string) *GuestbookService {
	return &GuestbookService{
		repo:   repo,
		logger: logger,
		ipSalt: ipSalt,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Submit stores an unapproved entry
func (s *GuestbookService) Submit(ctx context.Context, input *domain.GuestbookInput, meta domain.RequestMeta) (*domain.GuestbookEntry, error) {
	if input.Honeypot != "" {
		s.logger.WithContext(ctx).Warn("Honeypot field filled on guestbook form", nil)
		return nil, domain.ErrHoneypot
	}
	if err := Validator().Struct(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	entry := &domain.GuestbookEntry{
		ID:        s.newID(),
		Name:      input.Name,
		Message:   input.Message,
		IPHash:    HashIP(s.ipSalt, meta.IP),
		UserAgent: meta.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save guestbook entry: %w", err)
	}

	s.logger.WithContext(ctx).Info("Guestbook entry submitted", map[string]interface{}{
		"entry_id": entry.ID,
	})
	return entry, nil
}

// ListApproved returns the newest approved entries
func (s *GuestbookService) ListApproved(ctx context.Context) ([]*domain.GuestbookEntry, error) {
	return s.repo.List(ctx, domain.GuestbookApproved, PublicGuestbookLimit)
}

// List returns the moderation queue filtered by status
func (s *GuestbookService) List(ctx context.Context, status domain.GuestbookStatus) ([]*domain.GuestbookEntry, error) {
	switch status {
	case domain.GuestbookPending, domain.GuestbookApproved, domain.GuestbookAll:
	case "":
		status = domain.GuestbookAll
	default:
		return nil, fmt.Errorf("unknown guestbook status %q", status)
	}
	return s.repo.List(ctx, status, 0)
}

// SetApproval approves or hides an entry, recording who did it
func (s *GuestbookService) SetApproval(ctx context.Context, id string, approved bool, adminID string) (*domain.GuestbookEntry, error) {
	entry, err := s.repo.SetApproval(ctx, id, approved, adminID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Guestbook entry moderated", map[string]interface{}{
		"entry_id": id,
		"approved": approved,
		"admin_id": adminID,
	})
	return entry, nil
}

// Delete soft-deletes an entry
func (s *GuestbookService) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id, s.now().UTC())
}
