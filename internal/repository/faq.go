package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wedding-site/internal/domain"
)

const faqColumns = `id, question, answer, sort_order, created_at, updated_at, deleted_at`

// FAQRepository stores FAQs in SQLite
type FAQRepository struct {
	db *sql.DB
}

func NewFAQRepository(db *sql.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// List returns live FAQs by ascending order
func (r *FAQRepository) List(ctx context.Context) ([]*domain.FAQ, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+faqColumns+` FROM faqs WHERE deleted_at IS NULL ORDER BY sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer rows.Close()

	faqs := []*domain.FAQ{}
	for rows.Next() {
		faq, err := scanFAQ(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		faqs = append(faqs, faq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate faqs: %w", err)
	}
	return faqs, nil
}

// GetByID returns a live FAQ
func (r *FAQRepository) GetByID(ctx context.Context, id string) (*domain.FAQ, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id = ? AND deleted_at IS NULL`, id)
	faq, err := scanFAQ(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get faq: %w", err)
	}
	return faq, nil
}

// MaxOrder returns the highest order among live FAQs; ok is false when none exist
func (r *FAQRepository) MaxOrder(ctx context.Context) (int, bool, error) {
	var max sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM faqs WHERE deleted_at IS NULL`).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("failed to read faq order: %w", err)
	}
	return int(max.Int64), max.Valid, nil
}

// Create inserts a FAQ
func (r *FAQRepository) Create(ctx context.Context, faq *domain.FAQ) error {
	return insertFAQ(ctx, r.db, faq)
}

// Update overwrites question, answer and order of a live FAQ
func (r *FAQRepository) Update(ctx context.Context, faq *domain.FAQ) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE faqs SET question = ?, answer = ?, sort_order = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, faq.Question, faq.Answer, faq.Order, faq.UpdatedAt.UTC(), faq.ID)
	if err != nil {
		return fmt.Errorf("failed to update faq: %w", err)
	}
	return requireAffected(result)
}

// SoftDelete marks a live FAQ as deleted
func (r *FAQRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE faqs SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		at.UTC(), at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete faq: %w", err)
	}
	return requireAffected(result)
}

// ReplaceAll removes every FAQ and inserts faqs in one transaction
func (r *FAQRepository) ReplaceAll(ctx context.Context, faqs []*domain.FAQ) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM faqs`); err != nil {
		return fmt.Errorf("failed to clear faqs: %w", err)
	}
	for _, faq := range faqs {
		if err := insertFAQ(ctx, tx, faq); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertFAQ(ctx context.Context, db execer, faq *domain.FAQ) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO faqs (id, question, answer, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, faq.ID, faq.Question, faq.Answer, faq.Order, faq.CreatedAt.UTC(), faq.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create faq: %w", err)
	}
	return nil
}

func scanFAQ(row rowScanner) (*domain.FAQ, error) {
	faq := &domain.FAQ{}
	var deletedAt sql.NullTime
	if err := row.Scan(&faq.ID, &faq.Question, &faq.Answer, &faq.Order, &faq.CreatedAt, &faq.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		faq.DeletedAt = &deletedAt.Time
	}
	return faq, nil
}
