package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"wedding-site/internal/domain"
)

// MockStorage is a testify mock of domain.RateLimiterStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Hit(ctx context.Context, key string, limit int, window time.Duration) (*domain.RateLimitResult, error) {
	args := m.Called(ctx, key, limit, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateLimitResult), args.Error(1)
}

func (m *MockStorage) Get(ctx context.Context, key string) (*domain.RateLimitRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateLimitRecord), args.Error(1)
}

func (m *MockStorage) Reset(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Sweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockLogger is a testify mock of domain.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, err error, fields map[string]interface{}) {
	m.Called(msg, err, fields)
}

func (m *MockLogger) WithContext(ctx context.Context) domain.Logger {
	args := m.Called(ctx)
	return args.Get(0).(domain.Logger)
}

// newPermissiveLogger accepts any log call
func newPermissiveLogger() *MockLogger {
	l := new(MockLogger)
	l.On("Debug", mock.Anything, mock.Anything).Maybe()
	l.On("Info", mock.Anything, mock.Anything).Maybe()
	l.On("Warn", mock.Anything, mock.Anything).Maybe()
	l.On("Error", mock.Anything, mock.Anything, mock.Anything).Maybe()
	l.On("WithContext", mock.Anything).Return(l).Maybe()
	return l
}

// MockMailer is a testify mock of domain.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendRSVPConfirmation(ctx context.Context, to string, data domain.ConfirmationEmail) error {
	args := m.Called(ctx, to, data)
	return args.Error(0)
}

// fakeClock is a manually advanced time source
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// failingReader makes token generation fail
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

// MockGuestbookRepository is a testify mock of domain.GuestbookRepository
type MockGuestbookRepository struct {
	mock.Mock
}

func (m *MockGuestbookRepository) Create(ctx context.Context, entry *domain.GuestbookEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockGuestbookRepository) List(ctx context.Context, status domain.GuestbookStatus, limit int) ([]*domain.GuestbookEntry, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GuestbookEntry), args.Error(1)
}

func (m *MockGuestbookRepository) SetApproval(ctx context.Context, id string, approved bool, by string, at time.Time) (*domain.GuestbookEntry, error) {
	args := m.Called(ctx, id, approved, by, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GuestbookEntry), args.Error(1)
}

func (m *MockGuestbookRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockGuestbookRepository) Counts(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

// MockFAQRepository is a testify mock of domain.FAQRepository
type MockFAQRepository struct {
	mock.Mock
}

func (m *MockFAQRepository) List(ctx context.Context) ([]*domain.FAQ, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FAQ), args.Error(1)
}

func (m *MockFAQRepository) GetByID(ctx context.Context, id string) (*domain.FAQ, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FAQ), args.Error(1)
}

func (m *MockFAQRepository) MaxOrder(ctx context.Context) (int, bool, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockFAQRepository) Create(ctx context.Context, faq *domain.FAQ) error {
	args := m.Called(ctx, faq)
	return args.Error(0)
}

func (m *MockFAQRepository) Update(ctx context.Context, faq *domain.FAQ) error {
	args := m.Called(ctx, faq)
	return args.Error(0)
}

func (m *MockFAQRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockFAQRepository) ReplaceAll(ctx context.Context, faqs []*domain.FAQ) error {
	args := m.Called(ctx, faqs)
	return args.Error(0)
}

// MockSettingsRepository is a testify mock of domain.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) All(ctx context.Context) ([]*domain.Setting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Setting), args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSettingsRepository) UpsertWithDescription(ctx context.Context, setting *domain.Setting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockSettingsRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockUserRepository is a testify mock of domain.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}
