package service

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"wedding-site/internal/domain"
	"wedding-site/internal/logger"
)

// AdminPageSize is the number of RSVPs per admin listing page
const AdminPageSize = 20

var csvHeader = []string{
	"ID",
	"Nombre",
	"Apellidos",
	"Email",
	"Teléfono",
	"Asiste",
	"Acompañantes",
	"Menú",
	"Alergias",
	"Tiene niños",
	"Número de niños",
	"Necesidades especiales",
	"Comentarios",
	"Fecha creación",
	"Última actualización",
}

// RSVPService handles the public RSVP form and its back-office views
type RSVPService struct {
	repo   domain.RSVPRepository
	tokens *EditTokenService
	mailer domain.Mailer
	logger domain.Logger
	ipSalt string
	now    func() time.Time
	newID  func() string
}

// NewRSVPService creates the service
func NewRSVPService(
	repo domain.RSVPRepository,
	tokens *EditTokenService,
	mailer domain.Mailer,
	logger domain.Logger,
	ipSalt string,
) *RSVPService {
	return &RSVPService{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		logger: logger,
		ipSalt: ipSalt,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Submit stores a confirmation. A second submission with the same email
// overwrites the latest live RSVP of that address and rotates its edit
// token, so links mailed earlier stop working.
func (s *RSVPService) Submit(ctx context.Context, input *domain.SubmitRSVPInput, meta domain.RequestMeta) (*domain.RSVP, error) {
	log := s.logger.WithContext(ctx)

	if input.Honeypot != "" {
		log.Warn("Honeypot field filled on RSVP form", map[string]interface{}{
			"ip_hash": HashIP(s.ipSalt, meta.IP),
		})
		return nil, domain.ErrHoneypot
	}

	if err := Validator().Struct(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindLatestByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up rsvp by email: %w", err)
	}

	token, expiresAt, err := s.tokens.IssueToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rsvp := existing
	if rsvp == nil {
		rsvp = &domain.RSVP{
			ID:        s.newID(),
			Email:     input.Email,
			CreatedAt: now,
		}
	}

	rsvp.FirstName = input.FirstName
	rsvp.LastName = input.LastName
	rsvp.Phone = input.Phone
	rsvp.Attending = *input.Attending
	rsvp.NumGuests = input.NumGuests
	rsvp.Guests = input.Guests
	rsvp.Menu = input.Menu
	rsvp.Allergies = input.Allergies
	rsvp.HasChildren = input.HasChildren
	rsvp.NumChildren = input.NumChildren
	rsvp.SpecialNeeds = input.SpecialNeeds
	rsvp.Comments = input.Comments
	rsvp.EditToken = token
	rsvp.TokenExpiresAt = expiresAt
	rsvp.IPHash = HashIP(s.ipSalt, meta.IP)
	rsvp.UserAgent = meta.UserAgent
	rsvp.UpdatedAt = now

	if existing != nil {
		err = s.repo.Update(ctx, rsvp)
	} else {
		err = s.repo.Create(ctx, rsvp)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save rsvp: %w", err)
	}

	log.Info("RSVP submitted", map[string]interface{}{
		"rsvp_id":      rsvp.ID,
		"attending":    rsvp.Attending,
		"resubmission": existing != nil,
		"token":        logger.MaskToken(token),
	})

	mail := domain.ConfirmationEmail{
		FirstName: rsvp.FirstName,
		LastName:  rsvp.LastName,
		Attending: rsvp.Attending,
		EditToken: token,
		ExpiresAt: expiresAt,
	}
	if err := s.mailer.SendRSVPConfirmation(ctx, rsvp.Email, mail); err != nil {
		log.Error("Failed to send confirmation email", err, map[string]interface{}{
			"rsvp_id": rsvp.ID,
		})
	}

	return rsvp, nil
}

// List returns one admin page, newest first
func (s *RSVPService) List(ctx context.Context, filter domain.RSVPFilter) ([]*domain.RSVP, *domain.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = AdminPageSize
	}
	filter.Search = strings.TrimSpace(filter.Search)

	rsvps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list rsvps: %w", err)
	}

	return rsvps, &domain.Pagination{
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

// Get returns a live RSVP by id
func (s *RSVPService) Get(ctx context.Context, id string) (*domain.RSVP, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete soft-deletes an RSVP; its edit link stops resolving
func (s *RSVPService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.logger.WithContext(ctx).Info("RSVP deleted", map[string]interface{}{"rsvp_id": id})
	return nil
}

// ExportCSV writes every live RSVP, newest first
func (s *RSVPService) ExportCSV(ctx context.Context, w io.Writer) error {
	rsvps, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rsvps: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rsvps {
		names := make([]string, 0, len(r.Guests))
		for _, g := range r.Guests {
			names = append(names, g.Name)
		}

		record := []string{
			r.ID,
			r.FirstName,
			r.LastName,
			r.Email,
			r.Phone,
			yesNo(r.Attending),
			guestsColumn(r.NumGuests, names),
			r.Menu,
			r.Allergies,
			yesNo(r.HasChildren),
			strconv.Itoa(r.NumChildren),
			r.SpecialNeeds,
			r.Comments,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename is the download name of today's export
func (s *RSVPService) ExportFilename() string {
	return fmt.Sprintf("rsvps-%s.csv", s.now().UTC().Format("2006-01-02"))
}

// HashIP returns the salted SHA-256 of ip as hex
func HashIP(salt, ip string) string {
	sum := sha256.Sum256([]byte(salt + ip))
	return hex.EncodeToString(sum[:])
}

func yesNo(v bool) string {
	if v {
		return "Sí"
	}
	return "No"
}

func guestsColumn(count int, names []string) string {
	if len(names) == 0 {
		return strconv.Itoa(count)
	}
	return fmt.Sprintf("%d (%s)", count, strings.Join(names, "; "))
}
