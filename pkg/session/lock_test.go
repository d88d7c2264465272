package session

import (
	"context"
	"testing"

	"github.com/cthstore/storefront/pkg/domain"
)

// nopStore accepts everything and stores nothing.
type nopStore struct{}

func (nopStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	return nil
}
func (nopStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(ctx context.Context, sessionID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)         { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		uid := int64(i)
		_ = mgr.Save(ctx, domain.NewSession(uid, uid))
		_ = mgr.Turn(ctx, uid, uid, func(ctx context.Context, sess *domain.Session) error { return nil })
		_ = mgr.Delete(ctx, uid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
