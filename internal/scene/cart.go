package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/cthstore/storefront/internal/navigation"
	"github.com/cthstore/storefront/internal/shop"
	"github.com/cthstore/storefront/pkg/domain"
)

// Cart lists the user's cart lines and starts the checkout.
type Cart struct {
	m *Machine
}

func (*Cart) Name() domain.SceneName { return domain.SceneCart }

// engine restores the cart engine. A fresh engine reads the current total.
func (c *Cart) engine(ctx context.Context, t *Turn) (*navigation.Engine, error) {
	var snap *domain.Snapshot
	if t.Session.Cart != nil {
		snap = t.Session.Cart.Engine
	}
	total := int64(0)
	if snap == nil {
		var err error
		if total, err = c.m.repo.CartTotal(ctx, t.Session.UserID); err != nil {
			return nil, &domain.SourceFailure{NodeID: shop.CartRootID, Err: err}
		}
		t.Session.Cart = &domain.CartContext{Total: total}
	}
	root := func() domain.Node {
		return shop.CartRoot(t.Session.UserID, t.Session.Cart.Total, c.m.currency, c.m.pageSize)
	}
	return t.engine(snap, root, navigation.WithSource(c.m.cartSource)), nil
}

func (c *Cart) save(t *Turn, e *navigation.Engine, err error) error {
	if persist(err) {
		t.Session.Cart.Engine = e.Snapshot()
	}
	return err
}

func (c *Cart) Enter(ctx context.Context, t *Turn) error {
	e, err := c.engine(ctx, t)
	if err != nil {
		return err
	}
	_, err = e.Render(ctx, t.Target)
	return c.save(t, e, err)
}

func (*Cart) Leave(context.Context, *Turn) error { return nil }

func (*Cart) OnMessage(context.Context, *Turn, string) error {
	return errUnexpectedInput
}

func (c *Cart) OnAction(ctx context.Context, t *Turn, action domain.Action) error {
	if action.IsNavigation() {
		e, err := c.engine(ctx, t)
		if err != nil {
			return err
		}
		_, err = e.Handle(ctx, t.Target, action)
		return c.save(t, e, err)
	}

	if lineID, ok := shop.ParseRemoveToken(action.Target); ok {
		return c.remove(ctx, t, lineID)
	}
	if action.Target == shop.TokenCheckout {
		return c.checkout(ctx, t)
	}
	return domain.ErrUnhandledAction
}

// remove deletes a line and re-enters the scene with a fresh engine.
func (c *Cart) remove(ctx context.Context, t *Turn, lineID int64) error {
	err := c.m.repo.RemoveCartLine(ctx, t.Session.UserID, lineID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		t.Notify(ctx, "This item is no longer in your cart.")
	case err != nil:
		return fmt.Errorf("remove cart line %d: %w", lineID, err)
	default:
		t.Notify(ctx, "Item removed from cart.")
	}
	t.Session.Cart = nil
	return t.Reenter(ctx)
}

func (c *Cart) checkout(ctx context.Context, t *Turn) error {
	if c.m.checkout == nil {
		t.Notify(ctx, "Payments are not available here.")
		return nil
	}
	invoice, err := c.m.invoice(ctx, t.Session.UserID)
	if err != nil {
		return err
	}
	if len(invoice.Lines) == 0 {
		t.Notify(ctx, "Your cart is empty.")
		t.Session.Cart = nil
		return t.Reenter(ctx)
	}
	if err := c.m.checkout.SendInvoice(ctx, t.Target, invoice); err != nil {
		c.m.logger.Error("Invoice not sent", "user_id", t.Session.UserID, "err", err)
		t.Notify(ctx, NoticeRetry)
	}
	return nil
}
