package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"wedding-site/internal/domain"
)

// DailyChartDays is how many days with data the per-day chart keeps
const DailyChartDays = 30

const rsvpColumns = `id, first_name, last_name, email, phone, attending, num_guests, guests, menu,
	allergies, has_children, num_children, special_needs, comments, edit_token, token_expires_at,
	ip_hash, user_agent, created_at, updated_at, deleted_at`

// RSVPRepository stores RSVPs in SQLite
type RSVPRepository struct {
	db *sql.DB
}

// NewRSVPRepository creates a new RSVP repository
func NewRSVPRepository(db *sql.DB) *RSVPRepository {
	return &RSVPRepository{db: db}
}

// Create inserts a new RSVP
func (r *RSVPRepository) Create(ctx context.Context, rsvp *domain.RSVP) error {
	guests, err := encodeGuests(rsvp.Guests)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO rsvps (` + rsvpColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`
	_, err = r.db.ExecContext(ctx, query,
		rsvp.ID,
		rsvp.FirstName,
		rsvp.LastName,
		rsvp.Email,
		rsvp.Phone,
		rsvp.Attending,
		rsvp.NumGuests,
		guests,
		rsvp.Menu,
		rsvp.Allergies,
		rsvp.HasChildren,
		rsvp.NumChildren,
		rsvp.SpecialNeeds,
		rsvp.Comments,
		rsvp.EditToken,
		rsvp.TokenExpiresAt.UTC(),
		rsvp.IPHash,
		rsvp.UserAgent,
		rsvp.CreatedAt.UTC(),
		rsvp.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create rsvp: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of a live RSVP
func (r *RSVPRepository) Update(ctx context.Context, rsvp *domain.RSVP) error {
	guests, err := encodeGuests(rsvp.Guests)
	if err != nil {
		return err
	}

	query := `
		UPDATE rsvps
		SET first_name = ?, last_name = ?, phone = ?, attending = ?, num_guests = ?, guests = ?,
			menu = ?, allergies = ?, has_children = ?, num_children = ?, special_needs = ?,
			comments = ?, edit_token = ?, token_expires_at = ?, ip_hash = ?, user_agent = ?,
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		rsvp.FirstName,
		rsvp.LastName,
		rsvp.Phone,
		rsvp.Attending,
		rsvp.NumGuests,
		guests,
		rsvp.Menu,
		rsvp.Allergies,
		rsvp.HasChildren,
		rsvp.NumChildren,
		rsvp.SpecialNeeds,
		rsvp.Comments,
		rsvp.EditToken,
		rsvp.TokenExpiresAt.UTC(),
		rsvp.IPHash,
		rsvp.UserAgent,
		rsvp.UpdatedAt.UTC(),
		rsvp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rsvp: %w", err)
	}
	return requireAffected(result)
}

// UpdateDetails applies an edit made through the emailed link. The token,
// its expiry and the request metadata are left alone, and the write only
// lands while the row still carries token.
func (r *RSVPRepository) UpdateDetails(ctx context.Context, rsvp *domain.RSVP, token string) error {
	guests, err := encodeGuests(rsvp.Guests)
	if err != nil {
		return err
	}

	query := `
		UPDATE rsvps
		SET first_name = ?, last_name = ?, phone = ?, attending = ?, num_guests = ?, guests = ?,
			menu = ?, allergies = ?, has_children = ?, num_children = ?, special_needs = ?,
			comments = ?, updated_at = ?
		WHERE id = ? AND edit_token = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		rsvp.FirstName,
		rsvp.LastName,
		rsvp.Phone,
		rsvp.Attending,
		rsvp.NumGuests,
		guests,
		rsvp.Menu,
		rsvp.Allergies,
		rsvp.HasChildren,
		rsvp.NumChildren,
		rsvp.SpecialNeeds,
		rsvp.Comments,
		rsvp.UpdatedAt.UTC(),
		rsvp.ID,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to update rsvp: %w", err)
	}
	return requireAffected(result)
}

// GetByID returns a live RSVP
func (r *RSVPRepository) GetByID(ctx context.Context, id string) (*domain.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEditToken returns the live RSVP holding token
func (r *RSVPRepository) GetByEditToken(ctx context.Context, token string) (*domain.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE edit_token = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

// FindLatestByEmail returns the newest live RSVP of email
func (r *RSVPRepository) FindLatestByEmail(ctx context.Context, email string) (*domain.RSVP, error) {
	query := `
		SELECT ` + rsvpColumns + ` FROM rsvps
		WHERE email = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// List returns one filtered page and the total number of matches
func (r *RSVPRepository) List(ctx context.Context, filter domain.RSVPFilter) ([]*domain.RSVP, int, error) {
	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, "(first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Attending != nil {
		where = append(where, "attending = ?")
		args = append(args, *filter.Attending)
	}
	if filter.Menu != "" {
		where = append(where, "menu = ?")
		args = append(args, filter.Menu)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rsvps WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count rsvps: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE ` + clause + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rsvps: %w", err)
	}
	defer rows.Close()

	rsvps, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return rsvps, total, nil
}

// ListAll returns every live RSVP, newest first
func (r *RSVPRepository) ListAll(ctx context.Context) ([]*domain.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE deleted_at IS NULL ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// SoftDelete marks a live RSVP as deleted
func (r *RSVPRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rsvps SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		at.UTC(), at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete rsvp: %w", err)
	}
	return requireAffected(result)
}

// Stats computes the RSVP part of the dashboard. RSVPs created at or after
// since count as recent.
func (r *RSVPRepository) Stats(ctx context.Context, since time.Time) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{MenuStats: make(map[string]int)}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN attending THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(num_guests), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM rsvps
		WHERE deleted_at IS NULL
	`, since.UTC()).Scan(&stats.TotalRSVPs, &stats.AttendingRSVPs, &stats.TotalGuests, &stats.RecentRSVPs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rsvp totals: %w", err)
	}
	stats.NotAttendingRSVPs = stats.TotalRSVPs - stats.AttendingRSVPs

	menuRows, err := r.db.QueryContext(ctx, `
		SELECT menu, COUNT(*) FROM rsvps
		WHERE deleted_at IS NULL AND menu != ''
		GROUP BY menu
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to group rsvps by menu: %w", err)
	}
	defer menuRows.Close()
	for menuRows.Next() {
		var menu string
		var count int
		if err := menuRows.Scan(&menu, &count); err != nil {
			return nil, fmt.Errorf("failed to scan menu stats: %w", err)
		}
		stats.MenuStats[menu] = count
	}
	if err := menuRows.Err(); err != nil {
		return nil, err
	}
	menuRows.Close()

	daily, err := r.dailyCounts(ctx)
	if err != nil {
		return nil, err
	}
	stats.RSVPsByDate = daily

	return stats, nil
}

// dailyCounts groups RSVPs by UTC day in Go so the result does not depend on
// how the driver serialised the timestamps.
func (r *RSVPRepository) dailyCounts(ctx context.Context) ([]domain.RSVPDailyCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at, attending FROM rsvps
		WHERE deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT 1000
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load rsvp dates: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]*domain.RSVPDailyCount)
	for rows.Next() {
		var createdAt time.Time
		var attending bool
		if err := rows.Scan(&createdAt, &attending); err != nil {
			return nil, fmt.Errorf("failed to scan rsvp date: %w", err)
		}
		day := createdAt.UTC().Format("2006-01-02")
		count, ok := byDay[day]
		if !ok {
			count = &domain.RSVPDailyCount{Date: day}
			byDay[day] = count
		}
		if attending {
			count.Attending++
		} else {
			count.NotAttending++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	daily := make([]domain.RSVPDailyCount, 0, len(byDay))
	for _, count := range byDay {
		daily = append(daily, *count)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
	if len(daily) > DailyChartDays {
		daily = daily[len(daily)-DailyChartDays:]
	}
	return daily, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *RSVPRepository) scan(row rowScanner) (*domain.RSVP, error) {
	rsvp := &domain.RSVP{}
	var guests sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
		&rsvp.ID,
		&rsvp.FirstName,
		&rsvp.LastName,
		&rsvp.Email,
		&rsvp.Phone,
		&rsvp.Attending,
		&rsvp.NumGuests,
		&guests,
		&rsvp.Menu,
		&rsvp.Allergies,
		&rsvp.HasChildren,
		&rsvp.NumChildren,
		&rsvp.SpecialNeeds,
		&rsvp.Comments,
		&rsvp.EditToken,
		&rsvp.TokenExpiresAt,
		&rsvp.IPHash,
		&rsvp.UserAgent,
		&rsvp.CreatedAt,
		&rsvp.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if guests.Valid && guests.String != "" {
		if err := json.Unmarshal([]byte(guests.String), &rsvp.Guests); err != nil {
			return nil, fmt.Errorf("failed to decode guests of rsvp %s: %w", rsvp.ID, err)
		}
	}
	if deletedAt.Valid {
		rsvp.DeletedAt = &deletedAt.Time
	}
	return rsvp, nil
}

func (r *RSVPRepository) scanOne(row *sql.Row) (*domain.RSVP, error) {
	rsvp, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rsvp: %w", err)
	}
	return rsvp, nil
}

func (r *RSVPRepository) scanAll(rows *sql.Rows) ([]*domain.RSVP, error) {
	rsvps := []*domain.RSVP{}
	for rows.Next() {
		rsvp, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rsvps: %w", err)
	}
	return rsvps, nil
}

func encodeGuests(guests []domain.Guest) (interface{}, error) {
	if guests == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(guests)
	if err != nil {
		return nil, fmt.Errorf("failed to encode guests: %w", err)
	}
	return string(encoded), nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
