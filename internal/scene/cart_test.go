package scene_test

import (
	"context"
	"testing"

	"github.com/cthstore/storefront/internal/scene"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillCart(t *testing.T, h *harness) {
	t.Helper()
	ctx := context.Background()
	products, err := h.db.Products(ctx, coffeeID(t, h), ports.Page{Limit: 10})
	require.NoError(t, err)
	require.NoError(t, h.db.AddToCart(ctx, userID, products[0].ID, 2)) // Colombia Supremo
	require.NoError(t, h.db.AddToCart(ctx, userID, products[1].ID, 1)) // Espresso Blend
}

func coffeeID(t *testing.T, h *harness) int64 {
	t.Helper()
	var id int64
	require.NoError(t, h.db.DB().QueryRow(`SELECT id FROM categories WHERE name = 'Coffee'`).Scan(&id))
	return id
}

func TestCart_Empty(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/menu")
	h.press(t, "Cart")

	view := h.renderer.last()
	assert.Equal(t, "**Your cart is empty**", view.Text)
	assert.Equal(t, []string{"To Main Menu"}, labels(view))
}

func TestCart_ListAndRemove(t *testing.T) {
	h := newHarness(t)
	fillCart(t, h)
	h.send(t, "/menu")
	h.press(t, "Cart")

	view := h.renderer.last()
	assert.Equal(t, "**Your cart**\n\nTotal: 42.50 USD", view.Text)
	assert.Equal(t, []string{"Colombia Supremo × 2", "Espresso Blend × 1", "Checkout 💳", "To Main Menu"}, labels(view))

	h.press(t, "Colombia Supremo × 2")
	assert.Equal(t, []string{"Back", "Remove ❌", "To Main Menu"}, labels(h.renderer.last()))

	h.press(t, "Remove ❌")
	assert.Equal(t, "Item removed from cart.", h.renderer.lastNotice())
	view = h.renderer.last()
	assert.Equal(t, "**Your cart**\n\nTotal: 13.50 USD", view.Text)
	assert.Equal(t, []string{"Espresso Blend × 1", "Checkout 💳", "To Main Menu"}, labels(view))

	sess := h.session(t)
	assert.Equal(t, domain.SceneCart, sess.Scene)
	assert.Equal(t, "cart", currentNodeID(sess.Cart.Engine))
}

func TestCart_AddingFromCatalogRefreshesCart(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/menu")
	h.press(t, "Cart")
	assert.Equal(t, "**Your cart is empty**", h.renderer.last().Text)

	h.press(t, "To Main Menu")
	h.press(t, "Catalog")
	h.press(t, "Accessories")
	h.press(t, "Tea strainer")
	h.press(t, "Add to cart 🛒")
	h.send(t, "3")
	h.press(t, "Confirm✅")

	h.press(t, "To Main Menu")
	h.press(t, "Cart")
	assert.Equal(t, "**Your cart**\n\nTotal: 13.50 USD", h.renderer.last().Text)
}

func TestCart_CheckoutAndPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fillCart(t, h)
	h.send(t, "/menu")
	h.press(t, "Cart")

	h.press(t, "Checkout 💳")
	require.Len(t, h.checkout.invoices, 1)
	inv := h.checkout.invoices[0]
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, int64(4250), inv.Total())
	assert.Len(t, inv.Lines, 2)
	assert.NotEmpty(t, inv.Payload)

	assert.ErrorIs(t, h.machine.PreCheckout(ctx, userID, "USD", 100), scene.ErrCheckoutRejected)
	assert.ErrorIs(t, h.machine.PreCheckout(ctx, userID, "EUR", 4250), scene.ErrCheckoutRejected)
	require.NoError(t, h.machine.PreCheckout(ctx, userID, "USD", 4250))

	tgt := target()
	tgt.MessageID = 0
	require.NoError(t, h.machine.Paid(ctx, tgt, scene.Payment{
		Currency:         "USD",
		Total:            4250,
		Payload:          inv.Payload,
		ProviderChargeID: "ch_1",
		DeliveryAddress:  `{"city":"Lisbon"}`,
	}))
	assert.Contains(t, h.renderer.lastNotice(), "Thank you for your order!")
	assert.Equal(t, "Welcome to our CTH Store", h.renderer.last().Text)

	orders, err := h.db.Orders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderPaid, orders[0].Status)
	assert.Equal(t, int64(4250), orders[0].Total)
	assert.Len(t, orders[0].Items, 2)

	total, err := h.db.CartTotal(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, total)

	sess := h.session(t)
	assert.Equal(t, domain.SceneMainMenu, sess.Scene)
	assert.Nil(t, sess.Cart)

	assert.ErrorIs(t, h.machine.PreCheckout(ctx, userID, "USD", 4250), scene.ErrCheckoutRejected)
}

func TestCart_CheckoutUnavailable(t *testing.T) {
	h := newHarness(t, scene.WithCheckout(nil))
	fillCart(t, h)
	h.send(t, "/menu")
	h.press(t, "Cart")

	h.press(t, "Checkout 💳")
	assert.Equal(t, "Payments are not available here.", h.renderer.lastNotice())
	assert.Empty(t, h.checkout.invoices)
}
