package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cthstore/storefront/internal/shop"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
	"github.com/cthstore/storefront/pkg/session"
)

// ErrCheckoutRejected is returned by PreCheckout when the cart no longer
// matches the invoice. Its message is shown to the user.
var ErrCheckoutRejected = errors.New("your cart has changed, please check out again")

// Payment is a successful payment reported by the chat platform.
type Payment struct {
	Currency         string
	Total            int64 // minor units
	Payload          string
	TelegramChargeID string
	ProviderChargeID string
	DeliveryAddress  string // JSON document
}

// invoice builds an invoice from the user's cart.
func (m *Machine) invoice(ctx context.Context, userID int64) (ports.Invoice, error) {
	lines, err := m.repo.AllCartLines(ctx, userID)
	if err != nil {
		return ports.Invoice{}, fmt.Errorf("load cart: %w", err)
	}
	inv := ports.Invoice{
		Title:       "CTH Store order",
		Description: fmt.Sprintf("%d item(s) from your cart", len(lines)),
		Payload:     uuid.NewString(),
		Currency:    m.currency,
	}
	for _, l := range lines {
		inv.Lines = append(inv.Lines, ports.InvoiceLine{
			Label:  fmt.Sprintf("%s × %d", l.Product.Name, l.Quantity),
			Amount: l.Total(),
		})
	}
	return inv, nil
}

// PreCheckout validates a payment before the platform charges the user.
func (m *Machine) PreCheckout(ctx context.Context, userID int64, currency string, total int64) error {
	cartTotal, err := m.repo.CartTotal(ctx, userID)
	if err != nil {
		return fmt.Errorf("load cart total: %w", err)
	}
	if cartTotal == 0 || cartTotal != total || currency != m.currency {
		m.logger.Warn("Pre-checkout rejected",
			"user_id", userID,
			"cart_total", cartTotal,
			"invoice_total", total,
			"currency", currency,
		)
		return ErrCheckoutRejected
	}
	return nil
}

// Paid turns the user's cart into a paid order, clears the cart and
// returns the user to the main menu.
func (m *Machine) Paid(ctx context.Context, target domain.Target, p Payment) error {
	return m.turn(ctx, target, func(ctx context.Context, t *Turn) error {
		lines, err := m.repo.AllCartLines(ctx, t.Session.UserID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		order := domain.Order{
			UserID:          t.Session.UserID,
			DeliveryAddress: p.DeliveryAddress,
			Total:           p.Total,
			Status:          domain.OrderPaid,
			PaymentDetails:  fmt.Sprintf("payload=%s telegram=%s provider=%s", p.Payload, p.TelegramChargeID, p.ProviderChargeID),
		}
		for _, l := range lines {
			order.Items = append(order.Items, domain.OrderItem{
				ProductName:     l.Product.Name,
				PriceAtPurchase: l.Product.Price,
				Quantity:        l.Quantity,
			})
		}

		id, err := m.repo.CreateOrder(ctx, order)
		if err != nil {
			m.logger.Error("Order not recorded after payment",
				"user_id", t.Session.UserID,
				"provider_charge_id", p.ProviderChargeID,
				"err", err,
			)
			t.Notify(ctx, "Your payment was received but the order could not be recorded. Please contact support.")
			return session.ErrSkipSave
		}
		if err := m.repo.ClearCart(ctx, t.Session.UserID); err != nil {
			m.logger.Error("Cart not cleared after order", "user_id", t.Session.UserID, "order_id", id, "err", err)
		}
		m.logger.Info("Order paid", "user_id", t.Session.UserID, "order_id", id, "total", p.Total)

		t.Session.Cart = nil
		t.Notify(ctx, fmt.Sprintf("Thank you for your order! Order #%d is paid: %s.", id, shop.FormatMoney(p.Total, p.Currency)))
		return t.home(ctx)
	})
}
