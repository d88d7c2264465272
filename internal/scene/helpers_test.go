package scene_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cthstore/storefront/internal/scene"
	"github.com/cthstore/storefront/pkg/adapters/memory"
	"github.com/cthstore/storefront/pkg/adapters/sqlite"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
	"github.com/cthstore/storefront/pkg/session"
	"github.com/stretchr/testify/require"
)

const (
	userID = int64(7)
	chatID = int64(70)
)

// fakeRenderer records views and notices.
type fakeRenderer struct {
	mu      sync.Mutex
	views   []domain.View
	notices []string
}

func (r *fakeRenderer) Render(ctx context.Context, target domain.Target, view domain.View) (domain.MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
	return domain.MessageRef{ChatID: target.ChatID, MessageID: len(r.views)}, nil
}

func (r *fakeRenderer) Notify(ctx context.Context, target domain.Target, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, text)
	return nil
}

func (r *fakeRenderer) last() domain.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[len(r.views)-1]
}

func (r *fakeRenderer) lastNotice() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return ""
	}
	return r.notices[len(r.notices)-1]
}

// fakeCheckout records sent invoices.
type fakeCheckout struct {
	invoices []ports.Invoice
}

func (c *fakeCheckout) SendInvoice(ctx context.Context, target domain.Target, invoice ports.Invoice) error {
	c.invoices = append(c.invoices, invoice)
	return nil
}

// flakyRepo fails catalog reads while broken is set.
type flakyRepo struct {
	ports.ShopRepository
	broken bool
}

var errBackend = errors.New("database is locked")

func (r *flakyRepo) Subcategories(ctx context.Context, parentID *int64, page ports.Page) ([]domain.Category, error) {
	if r.broken {
		return nil, errBackend
	}
	return r.ShopRepository.Subcategories(ctx, parentID, page)
}

func (r *flakyRepo) CountSubcategories(ctx context.Context, parentID *int64) (int, error) {
	if r.broken {
		return 0, errBackend
	}
	return r.ShopRepository.CountSubcategories(ctx, parentID)
}

type harness struct {
	machine  *scene.Machine
	sessions *session.Manager
	repo     *flakyRepo
	db       *sqlite.Repository
	renderer *fakeRenderer
	checkout *fakeCheckout
	turns    []*domain.TurnEvent
}

func newHarness(t *testing.T, opts ...scene.Option) *harness {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, db.Seed(context.Background()))

	h := &harness{
		sessions: session.NewManager(memory.NewStore()),
		repo:     &flakyRepo{ShopRepository: db},
		db:       db,
		renderer: &fakeRenderer{},
		checkout: &fakeCheckout{},
	}
	hooks := domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) { h.turns = append(h.turns, e) },
	}
	opts = append([]scene.Option{
		scene.WithCheckout(h.checkout),
		scene.WithHooks(hooks),
		scene.WithCurrency("USD"),
	}, opts...)
	h.machine = scene.NewMachine(h.sessions, h.repo, h.renderer, opts...)
	return h
}

func target() domain.Target {
	return domain.Target{ChatID: chatID, UserID: userID, MessageID: 1}
}

func (h *harness) press(t *testing.T, label string) {
	t.Helper()
	for _, b := range h.renderer.last().Keyboard.Buttons() {
		if b.Label == label {
			require.NoError(t, h.machine.HandleCallback(context.Background(), target(), b.Action.Encode()))
			return
		}
	}
	t.Fatalf("no button %q in %v", label, labels(h.renderer.last()))
}

func (h *harness) send(t *testing.T, text string) {
	t.Helper()
	tgt := target()
	tgt.MessageID = 0
	require.NoError(t, h.machine.HandleText(context.Background(), tgt, text))
}

func (h *harness) session(t *testing.T) *domain.Session {
	t.Helper()
	sess, err := h.sessions.Load(context.Background(), userID)
	require.NoError(t, err)
	return sess
}

func labels(v domain.View) []string {
	var out []string
	for _, b := range v.Keyboard.Buttons() {
		out = append(out, b.Label)
	}
	return out
}
