package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed turn lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// ErrSkipSave can be returned from a TurnFunc to end the turn without persisting.
var ErrSkipSave = errors.New("skip save")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access so that one user has at most one turn in flight.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, userID int64) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, domain.SessionKey(userID))
		return err
	})
	return sess, err
}

// loadOrNew loads a session or builds a fresh one at the main menu. Caller holds the lock.
func (m *Manager) loadOrNew(ctx context.Context, userID, chatID int64) (*domain.Session, error) {
	sess, err := m.store.Load(ctx, domain.SessionKey(userID))
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, domain.ErrCorruptSession) {
		m.logger.Warn("Discarding unreadable session", "user_id", userID, "err", err)
		return domain.NewSession(userID, chatID), nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	}
	return domain.NewSession(userID, chatID), nil
}

// LoadOrStart tries to load a session. If not found, it initializes and persists a new one.
func (m *Manager) LoadOrStart(ctx context.Context, userID, chatID int64) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		var err error
		sess, err = m.loadOrNew(ctx, userID, chatID)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, domain.SessionKey(userID), sess); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return sess, err
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, sess *domain.Session) error {
	return m.WithLock(ctx, sess.UserID, func(ctx context.Context) error {
		return m.save(ctx, sess)
	})
}

func (m *Manager) save(ctx context.Context, sess *domain.Session) error {
	sess.UpdatedAt = m.now()
	return m.store.Save(ctx, domain.SessionKey(sess.UserID), sess)
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, userID int64) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		return m.store.Delete(ctx, domain.SessionKey(userID))
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// TurnFunc mutates a session during one user turn.
type TurnFunc func(ctx context.Context, sess *domain.Session) error

// Turn runs fn on the user's session while holding the user's lock and saves
// the result. When fn fails the session is not saved; ErrSkipSave ends the
// turn quietly without saving.
func (m *Manager) Turn(ctx context.Context, userID, chatID int64, fn TurnFunc) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		sess, err := m.loadOrNew(ctx, userID, chatID)
		if err != nil {
			return err
		}
		if chatID != 0 {
			sess.ChatID = chatID
		}

		if err := fn(ctx, sess); err != nil {
			if errors.Is(err, ErrSkipSave) {
				return nil
			}
			return err
		}

		if err := m.save(ctx, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// WithLock executes a function while holding the lock for the user's session.
func (m *Manager) WithLock(ctx context.Context, userID int64, fn func(context.Context) error) error {
	sessionID := domain.SessionKey(userID)
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
