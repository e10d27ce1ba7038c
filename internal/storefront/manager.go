package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalogcart/internal/cart"
	"github.com/angelmondragon/catalogcart/internal/catalog"
	"github.com/angelmondragon/catalogcart/internal/storage"
	"github.com/angelmondragon/catalogcart/pkg/errors"
	"github.com/angelmondragon/catalogcart/pkg/logger"
	"github.com/angelmondragon/catalogcart/pkg/metrics"
)

type ManagerOption func(*Manager)

// WithCartKey sets the storage key each session's cart is written under.
func WithCartKey(key string) ManagerOption {
	return func(m *Manager) { m.cartKey = key }
}

func WithLogger(logg *logger.Logger) ManagerOption {
	return func(m *Manager) { m.logg = logg }
}

func WithMetrics(sm *metrics.StorefrontMetrics) ManagerOption {
	return func(m *Manager) { m.metrics = sm }
}

// WithIdleTTL drops sessions not used for ttl. Zero keeps sessions forever.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTTL = ttl }
}

// Manager owns the live sessions. A session is created on first use and its cart is read
// back from storage under the session's own key scope. Idle sessions are swept when new
// ones are created; an evicted session reloads its cart on the next request.
type Manager struct {
	catalog *catalog.Catalog
	store   storage.Store
	cartKey string
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	sessions  map[string]*Session
	lastSweep time.Time
}

func NewManager(cat *catalog.Catalog, store storage.Store, opts ...ManagerOption) (*Manager, error) {
	if cat == nil {
		return nil, errors.New(errors.CodeInternal, "catalog is required")
	}
	if store == nil {
		return nil, errors.New(errors.CodeInternal, "storage is required")
	}
	m := &Manager{
		catalog:  cat,
		store:    store,
		cartKey:  cart.DefaultKey,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastSweep = m.now()
	if m.logg == nil {
		m.logg = logger.Nop()
	}
	return m, nil
}

func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// Ping checks the backing storage.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// NewSessionID issues an identifier accepted by Session.
func NewSessionID() string {
	return uuid.NewString()
}

// Session returns the session for id, loading it on first use.
func (m *Manager) Session(ctx context.Context, id string) (*Session, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid session id")
	}
	key := parsed.String()

	now := m.now()

	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok {
		s.touch(now)
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		s.touch(now)
		return s, nil
	}
	m.sweepLocked(ctx, now)

	opts := []cart.Option{
		cart.WithKey(m.cartKey),
		cart.WithLogger(m.logg),
		cart.WithCatalog(m.catalog),
	}
	if m.metrics != nil {
		opts = append(opts, cart.WithRecorder(m.metrics))
	}
	ledger, err := cart.Load(ctx, storage.Scoped(m.store, key), opts...)
	if err != nil {
		return nil, err
	}
	s = newSession(key, m.catalog, ledger, m.metrics)
	s.touch(now)
	m.sessions[key] = s
	m.logg.Info(m.logg.WithSessionID(ctx, key), "storefront session started")
	return s, nil
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// sweepLocked drops sessions idle for longer than idleTTL. It runs at most once per half TTL.
func (m *Manager) sweepLocked(ctx context.Context, now time.Time) {
	if m.idleTTL <= 0 || now.Sub(m.lastSweep) < m.idleTTL/2 {
		return
	}
	m.lastSweep = now
	evicted := 0
	for id, s := range m.sessions {
		if now.Sub(s.lastUsed()) > m.idleTTL {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logg.Info(m.logg.WithFields(ctx, map[string]any{"evicted": evicted, "live": len(m.sessions)}), "idle storefront sessions evicted")
	}
}
