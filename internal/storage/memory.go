package storage

import (
	"context"
	"sync"
	"time"

	"wedding-site/internal/domain"
)

// MemoryStorage keeps fixed-window counters in process memory. State is lost
// on restart and is not shared between instances.
type MemoryStorage struct {
	data   map[string]*domain.RateLimitRecord
	mutex  sync.Mutex
	logger domain.Logger
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// MemoryOption customises a MemoryStorage
type MemoryOption func(*MemoryStorage)

// WithClock replaces time.Now
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStorage) {
		m.now = now
	}
}

// NewMemoryStorage creates the store and starts the sweeper when
// cleanupInterval is positive.
func NewMemoryStorage(logger domain.Logger, cleanupInterval time.Duration, opts ...MemoryOption) *MemoryStorage {
	storage := &MemoryStorage{
		data:   make(map[string]*domain.RateLimitRecord),
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(storage)
	}

	if cleanupInterval > 0 {
		go storage.cleanup(cleanupInterval)
	}

	if logger != nil {
		logger.Info("Memory storage initialized", map[string]interface{}{
			"cleanup_interval": cleanupInterval.String(),
		})
	}

	return storage
}

// Hit applies the fixed-window algorithm to key under the store lock
func (m *MemoryStorage) Hit(ctx context.Context, key string, limit int, window time.Duration) (*domain.RateLimitResult, error) {
	start := time.Now()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	record, exists := m.data[key]

	if !exists || record.Expired(now) {
		record = &domain.RateLimitRecord{
			Key:           key,
			Count:         1,
			WindowResetAt: now.Add(window),
		}
		m.data[key] = record
		m.logStorageOperation("HIT", key, start)
		return &domain.RateLimitResult{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - 1,
			ResetAt:   record.WindowResetAt,
		}, nil
	}

	if record.Count >= limit {
		m.logStorageOperation("HIT", key, start)
		return &domain.RateLimitResult{
			Allowed:   false,
			Limit:     limit,
			Remaining: 0,
			ResetAt:   record.WindowResetAt,
		}, nil
	}

	record.Count++
	m.logStorageOperation("HIT", key, start)
	return &domain.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - record.Count,
		ResetAt:   record.WindowResetAt,
	}, nil
}

// Get returns a copy of the live record for key
func (m *MemoryStorage) Get(ctx context.Context, key string) (*domain.RateLimitRecord, error) {
	start := time.Now()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	record, exists := m.data[key]
	m.logStorageOperation("GET", key, start)
	if !exists || record.Expired(m.now()) {
		return nil, nil
	}

	result := *record
	return &result, nil
}

// Reset drops the counter for key
func (m *MemoryStorage) Reset(ctx context.Context, key string) error {
	start := time.Now()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.data, key)

	m.logStorageOperation("RESET", key, start)
	return nil
}

// Sweep removes records whose window has passed. Correctness never depends on
// it since Hit already treats expired records as fresh; it only bounds memory.
func (m *MemoryStorage) Sweep(ctx context.Context) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	removed := 0
	for key, record := range m.data {
		if record.Expired(now) {
			delete(m.data, key)
			removed++
		}
	}

	if removed > 0 && m.logger != nil {
		m.logger.Debug("Memory storage cleanup completed", map[string]interface{}{
			"removed_records": removed,
			"remaining":       len(m.data),
		})
	}

	return removed, nil
}

// Health always succeeds for the in-process store
func (m *MemoryStorage) Health(ctx context.Context) error {
	if m.logger != nil {
		m.logger.Debug("Memory storage health check", m.GetStats())
	}
	return nil
}

// Close stops the sweeper and drops all counters
func (m *MemoryStorage) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})

	m.mutex.Lock()
	m.data = make(map[string]*domain.RateLimitRecord)
	m.mutex.Unlock()

	if m.logger != nil {
		m.logger.Info("Memory storage closed", nil)
	}
	return nil
}

// GetStats reports the size of the counter table
func (m *MemoryStorage) GetStats() map[string]interface{} {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return map[string]interface{}{
		"records": len(m.data),
		"type":    string(MemoryStorageType),
	}
}

func (m *MemoryStorage) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep(context.Background())
		case <-m.stop:
			return
		}
	}
}

func (m *MemoryStorage) logStorageOperation(operation, key string, start time.Time) {
	logStorageEvent(m.logger, operation, key, start, nil)
}
