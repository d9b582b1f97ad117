package domain

import (
	"context"
	"time"
)

// RateLimiterStorage keeps fixed-window counters. Implementations must make
// Hit atomic per key so concurrent requests cannot both take the last slot.
type RateLimiterStorage interface {
	// Hit runs check-then-increment for key and returns the decision
	Hit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error)

	// Get returns the current record for key, nil when absent or expired
	Get(ctx context.Context, key string) (*RateLimitRecord, error)

	// Reset drops the counter for key
	Reset(ctx context.Context, key string) error

	// Sweep removes every expired record and returns how many were dropped
	Sweep(ctx context.Context) (int, error)

	Health(ctx context.Context) error
	Close() error
}

// RateLimiterService applies per-scope rules on top of a storage
type RateLimiterService interface {
	Check(ctx context.Context, scope RateLimitScope, identifier string) (*RateLimitResult, error)
	Rule(scope RateLimitScope) (*RateLimitRule, bool)
	Status(ctx context.Context, scope RateLimitScope, identifier string) (*RateLimitRecord, error)
	Reset(ctx context.Context, scope RateLimitScope, identifier string) error
}

// RSVPRepository persists RSVPs. Lookups skip soft-deleted rows.
type RSVPRepository interface {
	Create(ctx context.Context, rsvp *RSVP) error
	Update(ctx context.Context, rsvp *RSVP) error
	// UpdateDetails writes the guest-editable columns only while the row
	// still holds token; it returns ErrNotFound once the token was replaced.
	UpdateDetails(ctx context.Context, rsvp *RSVP, token string) error
	GetByID(ctx context.Context, id string) (*RSVP, error)
	GetByEditToken(ctx context.Context, token string) (*RSVP, error)
	FindLatestByEmail(ctx context.Context, email string) (*RSVP, error)
	List(ctx context.Context, filter RSVPFilter) ([]*RSVP, int, error)
	ListAll(ctx context.Context) ([]*RSVP, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Stats(ctx context.Context, since time.Time) (*DashboardStats, error)
}

// GuestbookRepository persists guestbook entries
type GuestbookRepository interface {
	Create(ctx context.Context, entry *GuestbookEntry) error
	List(ctx context.Context, status GuestbookStatus, limit int) ([]*GuestbookEntry, error)
	SetApproval(ctx context.Context, id string, approved bool, by string, at time.Time) (*GuestbookEntry, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Counts(ctx context.Context) (approved int, pending int, err error)
}

// FAQRepository persists FAQs
type FAQRepository interface {
	List(ctx context.Context) ([]*FAQ, error)
	GetByID(ctx context.Context, id string) (*FAQ, error)
	MaxOrder(ctx context.Context) (int, bool, error)
	Create(ctx context.Context, faq *FAQ) error
	Update(ctx context.Context, faq *FAQ) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	ReplaceAll(ctx context.Context, faqs []*FAQ) error
}

// SettingsRepository persists site settings
type SettingsRepository interface {
	All(ctx context.Context) ([]*Setting, error)
	Upsert(ctx context.Context, key, value string) error
	UpsertWithDescription(ctx context.Context, setting *Setting) error
	Count(ctx context.Context) (int, error)
}

// UserRepository persists back-office accounts
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Upsert(ctx context.Context, user *User) error
	List(ctx context.Context) ([]*User, error)
}

// Mailer delivers outbound email
type Mailer interface {
	SendRSVPConfirmation(ctx context.Context, to string, data ConfirmationEmail) error
}

// Logger is the structured logging contract used across the application
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
	WithContext(ctx context.Context) Logger
}
