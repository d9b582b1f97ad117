package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"wedding-site/internal/domain"
)

// fakeRSVPRepo is an in-memory domain.RSVPRepository honouring soft deletes
// and the unique edit token.
type fakeRSVPRepo struct {
	mu      sync.Mutex
	rows    map[string]*domain.RSVP
	updates int
	lookups int
	failOn  string
}

func newFakeRSVPRepo() *fakeRSVPRepo {
	return &fakeRSVPRepo{rows: make(map[string]*domain.RSVP)}
}

var errFakeStore = errors.New("store unavailable")

func (f *fakeRSVPRepo) Create(ctx context.Context, rsvp *domain.RSVP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "create" {
		return errFakeStore
	}
	if err := f.checkToken(rsvp); err != nil {
		return err
	}
	row := *rsvp
	f.rows[rsvp.ID] = &row
	return nil
}

func (f *fakeRSVPRepo) Update(ctx context.Context, rsvp *domain.RSVP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "update" {
		return errFakeStore
	}
	existing, ok := f.rows[rsvp.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if err := f.checkToken(rsvp); err != nil {
		return err
	}
	row := *rsvp
	f.rows[rsvp.ID] = &row
	f.updates++
	return nil
}

func (f *fakeRSVPRepo) UpdateDetails(ctx context.Context, rsvp *domain.RSVP, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "update" {
		return errFakeStore
	}
	existing, ok := f.rows[rsvp.ID]
	if !ok || existing.DeletedAt != nil || existing.EditToken != token {
		return domain.ErrNotFound
	}
	row := *rsvp
	row.EditToken = existing.EditToken
	row.TokenExpiresAt = existing.TokenExpiresAt
	row.IPHash = existing.IPHash
	row.UserAgent = existing.UserAgent
	f.rows[rsvp.ID] = &row
	f.updates++
	return nil
}

// rotate replaces the edit token of id as a resubmission would
func (f *fakeRSVPRepo) rotate(id, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].EditToken = token
}

func (f *fakeRSVPRepo) checkToken(rsvp *domain.RSVP) error {
	for id, row := range f.rows {
		if id != rsvp.ID && row.EditToken == rsvp.EditToken {
			return errors.New("UNIQUE constraint failed: rsvps.edit_token")
		}
	}
	return nil
}

func (f *fakeRSVPRepo) GetByID(ctx context.Context, id string) (*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRSVPRepo) GetByEditToken(ctx context.Context, token string) (*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "token" {
		return nil, errFakeStore
	}
	f.lookups++
	for _, row := range f.rows {
		if row.EditToken == token && row.DeletedAt == nil {
			copied := *row
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) FindLatestByEmail(ctx context.Context, email string) (*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.RSVP
	for _, row := range f.rows {
		if row.Email != email || row.DeletedAt != nil {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeRSVPRepo) List(ctx context.Context, filter domain.RSVPFilter) ([]*domain.RSVP, int, error) {
	all, _ := f.ListAll(ctx)
	return all, len(all), nil
}

func (f *fakeRSVPRepo) ListAll(ctx context.Context) ([]*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RSVP
	for _, row := range f.rows {
		if row.DeletedAt == nil {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRSVPRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.DeletedAt != nil {
		return domain.ErrNotFound
	}
	row.DeletedAt = &at
	return nil
}

func (f *fakeRSVPRepo) Stats(ctx context.Context, since time.Time) (*domain.DashboardStats, error) {
	all, _ := f.ListAll(ctx)
	stats := &domain.DashboardStats{MenuStats: map[string]int{}}
	for _, r := range all {
		stats.TotalRSVPs++
		stats.TotalGuests += r.NumGuests
		if r.Attending {
			stats.AttendingRSVPs++
		} else {
			stats.NotAttendingRSVPs++
		}
	}
	return stats, nil
}

func (f *fakeRSVPRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// rotatingRSVPRepo replaces the edit token right after it is looked up, as a
// resubmission landing between the read and the write of an edit would.
type rotatingRSVPRepo struct {
	*fakeRSVPRepo
	next string
}

func (r *rotatingRSVPRepo) GetByEditToken(ctx context.Context, token string) (*domain.RSVP, error) {
	rsvp, err := r.fakeRSVPRepo.GetByEditToken(ctx, token)
	if err == nil && r.next != "" {
		r.rotate(rsvp.ID, r.next)
		r.next = ""
	}
	return rsvp, err
}
