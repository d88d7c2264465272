package scene_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"testing"

	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/internal/scene"
	"github.com/cthstore/storefront/pkg/adapters/memory"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/persistence/middleware"
	"github.com/cthstore/storefront/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func currentNodeID(s *domain.Snapshot) string {
	return s.Nodes[s.Current].Node.ID
}

func TestMachine_StartGreets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := domain.User{ID: userID, FirstName: "Ann"}

	require.NoError(t, h.machine.Start(ctx, target(), user))
	assert.Equal(t, "Hello, Ann! Nice to meet you. You are registered.", h.renderer.lastNotice())
	assert.Equal(t, "Welcome to our CTH Store", h.renderer.last().Text)
	assert.Equal(t, []string{"Catalog", "Cart", "FAQ"}, labels(h.renderer.last()))

	require.NoError(t, h.machine.Start(ctx, target(), user))
	assert.Equal(t, "Welcome back, Ann!", h.renderer.lastNotice())
	assert.Equal(t, domain.SceneMainMenu, h.session(t).Scene)
}

func TestMachine_BrowseCatalog(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/menu")

	h.press(t, "Catalog")
	assert.Equal(t, []string{"Accessories", "Coffee", "Tea", "To Main Menu"}, labels(h.renderer.last()))

	h.press(t, "Coffee")
	view := h.renderer.last()
	assert.Equal(t, "Category: **Coffee**", view.Text)
	assert.Equal(t, []string{"Colombia Supremo", "Espresso Blend", "Ethiopia Yirgacheffe", "Back", "To Main Menu"}, labels(view))

	h.press(t, "Colombia Supremo")
	assert.Equal(t, []string{"Back", "Add to cart 🛒", "To Main Menu"}, labels(h.renderer.last()))

	sess := h.session(t)
	assert.Equal(t, domain.SceneCatalog, sess.Scene)
	require.NotNil(t, sess.Catalog)
	assert.Equal(t, "Colombia Supremo", sess.Catalog.Engine.Nodes[sess.Catalog.Engine.Current].Node.Content.Label)

	h.press(t, "Back")
	h.press(t, "Back")
	assert.Equal(t, "catalog", currentNodeID(h.session(t).Catalog.Engine))
}

func TestMachine_ReturnToMainMenuClearsState(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/menu")
	h.press(t, "Catalog")
	h.press(t, "Tea")

	h.press(t, "To Main Menu")
	sess := h.session(t)
	assert.Equal(t, domain.SceneMainMenu, sess.Scene)
	assert.Nil(t, sess.Catalog)

	h.press(t, "Catalog")
	assert.Equal(t, "catalog", currentNodeID(h.session(t).Catalog.Engine), "catalog starts over at its root")
}

func TestMachine_AddToCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.send(t, "/menu")
	h.press(t, "Catalog")
	h.press(t, "Coffee")
	h.press(t, "Colombia Supremo")

	h.press(t, "Add to cart 🛒")
	assert.Equal(t, "Product in stock: 30\n\nEnter the quantity you want to add to cart:", h.renderer.last().Text)
	assert.Equal(t, domain.StepSetQuantity, h.session(t).Step)

	for _, bad := range []string{"0", "31", "-2"} {
		h.send(t, bad)
		assert.Equal(t, "Quantity must be between 1 and 30 inclusive.", h.renderer.last().Text, bad)
		sess := h.session(t)
		assert.Equal(t, domain.SceneProduct, sess.Scene)
		assert.Equal(t, domain.StepSetQuantity, sess.Step)
	}
	h.send(t, "two")
	assert.Equal(t, "Invalid quantity format. Please enter a number.", h.renderer.last().Text)

	h.send(t, "2")
	confirm := h.renderer.last()
	assert.Contains(t, confirm.Text, "**Colombia Supremo**")
	assert.Contains(t, confirm.Text, "Price per unit: 14.50 USD")
	assert.Contains(t, confirm.Text, "Units: 2")
	assert.Contains(t, confirm.Text, "Total price: 29.00 USD")
	assert.Equal(t, []string{"Cancel❌", "Confirm✅", "To Main Menu"}, labels(confirm))

	h.press(t, "Confirm✅")
	assert.Equal(t, "Product added to your cart", h.renderer.lastNotice())
	assert.Contains(t, h.renderer.last().Text, "Colombia Supremo", "back at the product in the catalog")

	sess := h.session(t)
	assert.Equal(t, domain.SceneCatalog, sess.Scene)
	assert.Equal(t, domain.StepNone, sess.Step)
	assert.Nil(t, sess.Product)

	total, err := h.db.CartTotal(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2900), total)
}

func TestMachine_QuantityBounds(t *testing.T) {
	for _, qty := range []string{"1", "30"} {
		t.Run(qty, func(t *testing.T) {
			h := newHarness(t)
			h.send(t, "/menu")
			h.press(t, "Catalog")
			h.press(t, "Coffee")
			h.press(t, "Colombia Supremo")
			h.press(t, "Add to cart 🛒")

			h.send(t, qty)
			sess := h.session(t)
			assert.Equal(t, domain.SceneProduct, sess.Scene)
			assert.Equal(t, domain.StepConfirm, sess.Step)
			assert.Contains(t, h.renderer.last().Text, "Units: "+qty)
		})
	}
}

func TestMachine_CancelReturnsToCatalog(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/menu")
	h.press(t, "Catalog")
	h.press(t, "Accessories")
	h.press(t, "Gaiwan")
	h.press(t, "Add to cart 🛒")

	h.press(t, "Cancel❌")
	assert.Equal(t, "Action cancelled.", h.renderer.lastNotice())
	sess := h.session(t)
	assert.Equal(t, domain.SceneCatalog, sess.Scene)
	assert.Nil(t, sess.Product)

	total, err := h.db.CartTotal(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestMachine_SourceFailureKeepsPosition(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/menu")
	h.press(t, "Catalog")

	h.repo.broken = true
	h.press(t, "Tea")
	assert.Equal(t, scene.NoticeRetry, h.renderer.lastNotice())
	assert.Equal(t, scene.OutcomeSourceFailure, h.turns[len(h.turns)-1].Outcome)
	assert.Equal(t, "catalog", currentNodeID(h.session(t).Catalog.Engine))

	h.repo.broken = false
	h.press(t, "Tea")
	assert.Equal(t, "Category: **Tea**", h.renderer.last().Text)
}

func TestMachine_SourceFailureOnEnterIsNotSaved(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/menu")

	h.repo.broken = true
	h.press(t, "Catalog")
	assert.Equal(t, scene.NoticeRetry, h.renderer.lastNotice())

	sess := h.session(t)
	assert.Equal(t, domain.SceneMainMenu, sess.Scene)
	assert.Nil(t, sess.Catalog)
}

func TestMachine_Faults(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.send(t, "/menu")
	h.press(t, "Catalog")

	require.NoError(t, h.machine.HandleCallback(ctx, target(), "nav:down:category_999"))
	assert.Equal(t, scene.NoticeStale, h.renderer.lastNotice())

	require.NoError(t, h.machine.HandleCallback(ctx, target(), "cart:remove:1"))
	assert.Equal(t, scene.NoticeUnsupported, h.renderer.lastNotice())

	require.NoError(t, h.machine.HandleCallback(ctx, target(), "nav:sideways"))
	assert.Equal(t, scene.NoticeStale, h.renderer.lastNotice())

	h.send(t, "hello")
	assert.Equal(t, scene.NoticeUseButtons, h.renderer.lastNotice())

	assert.Equal(t, scene.OutcomeFault, h.turns[len(h.turns)-1].Outcome)
	assert.Equal(t, "catalog", currentNodeID(h.session(t).Catalog.Engine))
}

func TestMachine_CorruptEngineStartsFresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	sess := domain.NewSession(userID, chatID)
	sess.Scene = domain.SceneCatalog
	sess.Catalog = &domain.CatalogContext{Engine: &domain.Snapshot{Current: 4}}
	require.NoError(t, h.sessions.Save(ctx, sess))

	require.NoError(t, h.machine.HandleCallback(ctx, target(), domain.Current().Encode()))
	assert.Equal(t, []string{"Accessories", "Coffee", "Tea", "To Main Menu"}, labels(h.renderer.last()))
	assert.Equal(t, "catalog", currentNodeID(h.session(t).Catalog.Engine))
}

func TestMachine_UnknownSceneResets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	sess := domain.NewSession(userID, chatID)
	sess.Scene = "wishlist"
	require.NoError(t, h.sessions.Save(ctx, sess))

	h.send(t, "anything")
	assert.Equal(t, "Welcome to our CTH Store", h.renderer.last().Text)
	assert.Equal(t, domain.SceneMainMenu, h.session(t).Scene)
}

func TestMachine_RejectsOversizedText(t *testing.T) {
	h := newHarness(t, scene.WithMaxInputSize(16))
	h.send(t, "/menu")
	h.press(t, "FAQ")
	turns := len(h.turns)

	h.send(t, "how long does shipping take")
	assert.Equal(t, scene.NoticeTooLong, h.renderer.lastNotice())
	assert.Len(t, h.turns, turns, "rejected input must not run a turn")
	assert.Empty(t, h.session(t).FAQ.Search)

	h.send(t, "bad\xff")
	assert.Equal(t, scene.NoticeUnreadable, h.renderer.lastNotice())

	h.send(t, "\x1b[0mtea")
	assert.Equal(t, "[0mtea", h.session(t).FAQ.Search)
}

func TestMachine_UnreadableSessionRecovers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	underlying := memory.NewStore()
	stale := domain.NewSession(userID, chatID)
	stale.Scene = domain.SceneCart
	require.NoError(t, underlying.Save(ctx, domain.SessionKey(userID), stale))

	key := make([]byte, middleware.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	sessions := session.NewManager(middleware.Chain(underlying, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})))
	machine := scene.NewMachine(sessions, h.repo, h.renderer, scene.WithCurrency("USD"))

	require.NoError(t, machine.HandleText(ctx, target(), "/start"))
	require.NotEmpty(t, h.renderer.views, "the user gets the main menu")
	assert.Contains(t, labels(h.renderer.last()), "Catalog")

	sess, err := sessions.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.SceneMainMenu, sess.Scene)
}

// failingNotifier drops every notice.
type failingNotifier struct {
	fakeRenderer
}

func (r *failingNotifier) Notify(ctx context.Context, target domain.Target, text string) error {
	return errors.New("chat not found")
}

func TestMachine_MalformedCallbackNotifyFailureLogged(t *testing.T) {
	h := newHarness(t)
	var buf bytes.Buffer
	machine := scene.NewMachine(h.sessions, h.repo, &failingNotifier{},
		scene.WithLogger(logging.NewWithWriter(&buf, slog.LevelDebug, logging.FormatText)))

	require.NoError(t, machine.HandleCallback(context.Background(), target(), "nav:sideways"))
	assert.Contains(t, buf.String(), "Notify failed")
	assert.Contains(t, buf.String(), "chat not found")
}
