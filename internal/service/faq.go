package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wedding-site/internal/domain"
)

// FAQService manages the question list of the public site
type FAQService struct {
	repo   domain.FAQRepository
	logger domain.Logger
	now    func() time.Time
	newID  func() string
}

func NewFAQService(repo domain.FAQRepository, logger domain.Logger) *FAQService {
	return &FAQService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List returns live FAQs by ascending order
func (s *FAQService) List(ctx context.Context) ([]*domain.FAQ, error) {
	return s.repo.List(ctx)
}

// Create appends a FAQ after the current last one
func (s *FAQService) Create(ctx context.Context, input *domain.FAQInput) (*domain.FAQ, error) {
	if err := Validator().Struct(input); err != nil {
		return nil, err
	}

	maxOrder, ok, err := s.repo.MaxOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read faq order: %w", err)
	}
	order := 0
	if ok {
		order = maxOrder + 1
	}

	now := s.now().UTC()
	faq := &domain.FAQ{
		ID:        s.newID(),
		Question:  input.Question,
		Answer:    input.Answer,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, faq); err != nil {
		return nil, fmt.Errorf("failed to create faq: %w", err)
	}
	return faq, nil
}

// Update replaces the text of a FAQ and optionally moves it
func (s *FAQService) Update(ctx context.Context, id string, input *domain.FAQInput) (*domain.FAQ, error) {
	if err := Validator().Struct(input); err != nil {
		return nil, err
	}

	faq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	faq.Question = input.Question
	faq.Answer = input.Answer
	if input.Order != nil {
		faq.Order = *input.Order
	}
	faq.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, faq); err != nil {
		return nil, err
	}
	return faq, nil
}

// Delete soft-deletes a FAQ
func (s *FAQService) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id, s.now().UTC())
}
