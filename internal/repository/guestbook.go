package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wedding-site/internal/domain"
)

const guestbookColumns = `id, name, message, approved, approved_at, approved_by, ip_hash, user_agent,
	created_at, updated_at, deleted_at`

// GuestbookRepository stores guestbook entries in SQLite
type GuestbookRepository struct {
	db *sql.DB
}

func NewGuestbookRepository(db *sql.DB) *GuestbookRepository {
	return &GuestbookRepository{db: db}
}

// Create inserts a new entry
func (r *GuestbookRepository) Create(ctx context.Context, entry *domain.GuestbookEntry) error {
	query := `
		INSERT INTO guestbook_entries (id, name, message, approved, ip_hash, user_agent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Name,
		entry.Message,
		entry.Approved,
		entry.IPHash,
		entry.UserAgent,
		entry.CreatedAt.UTC(),
		entry.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create guestbook entry: %w", err)
	}
	return nil
}

// List returns live entries with status, newest first. limit <= 0 means all.
func (r *GuestbookRepository) List(ctx context.Context, status domain.GuestbookStatus, limit int) ([]*domain.GuestbookEntry, error) {
	query := `SELECT ` + guestbookColumns + ` FROM guestbook_entries WHERE deleted_at IS NULL`
	var args []interface{}

	switch status {
	case domain.GuestbookApproved:
		query += ` AND approved = 1`
	case domain.GuestbookPending:
		query += ` AND approved = 0`
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list guestbook entries: %w", err)
	}
	defer rows.Close()

	entries := []*domain.GuestbookEntry{}
	for rows.Next() {
		entry, err := scanGuestbookEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guestbook entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guestbook entries: %w", err)
	}
	return entries, nil
}

// SetApproval approves an entry, or withdraws the approval and clears its
// audit columns, then returns the updated row.
func (r *GuestbookRepository) SetApproval(ctx context.Context, id string, approved bool, by string, at time.Time) (*domain.GuestbookEntry, error) {
	var approvedAt, approvedBy interface{}
	if approved {
		approvedAt = at.UTC()
		approvedBy = by
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE guestbook_entries
		SET approved = ?, approved_at = ?, approved_by = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, approved, approvedAt, approvedBy, at.UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update guestbook entry: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+guestbookColumns+` FROM guestbook_entries WHERE id = ?`, id)
	entry, err := scanGuestbookEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guestbook entry: %w", err)
	}
	return entry, nil
}

// SoftDelete marks a live entry as deleted
func (r *GuestbookRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE guestbook_entries SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		at.UTC(), at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete guestbook entry: %w", err)
	}
	return requireAffected(result)
}

// Counts returns the number of approved and pending live entries
func (r *GuestbookRepository) Counts(ctx context.Context) (int, int, error) {
	var approved, pending int
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN approved THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN approved THEN 0 ELSE 1 END), 0)
		FROM guestbook_entries
		WHERE deleted_at IS NULL
	`).Scan(&approved, &pending)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count guestbook entries: %w", err)
	}
	return approved, pending, nil
}

func scanGuestbookEntry(row rowScanner) (*domain.GuestbookEntry, error) {
	entry := &domain.GuestbookEntry{}
	var approvedAt, deletedAt sql.NullTime
	var approvedBy sql.NullString

	err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Message,
		&entry.Approved,
		&approvedAt,
		&approvedBy,
		&entry.IPHash,
		&entry.UserAgent,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if approvedAt.Valid {
		entry.ApprovedAt = &approvedAt.Time
	}
	if approvedBy.Valid {
		entry.ApprovedBy = &approvedBy.String
	}
	if deletedAt.Valid {
		entry.DeletedAt = &deletedAt.Time
	}
	return entry, nil
}
