package ports

import (
	"context"

	"github.com/cthstore/storefront/pkg/domain"
)

// SessionStore persists conversation sessions between independent event deliveries.
// It must return the most recently written session for a key.
type SessionStore interface {
	// Save persists the session for a given key.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for a given key.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given key.
	Delete(ctx context.Context, sessionID string) error

	// List returns the keys of stored sessions.
	List(ctx context.Context) ([]string, error)
}
