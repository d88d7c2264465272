package scene

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cthstore/storefront/internal/shop"
	"github.com/cthstore/storefront/pkg/domain"
)

// ProductProcessing asks for a quantity and commits it to the cart.
// It is entered from the catalog only and always returns there.
type ProductProcessing struct {
	m *Machine
}

func (*ProductProcessing) Name() domain.SceneName { return domain.SceneProduct }

func (p *ProductProcessing) Enter(ctx context.Context, t *Turn) error {
	if t.Session.Product == nil {
		t.Notify(ctx, "Error: The product you were processing could not be found. Please try again.")
		return t.Goto(ctx, domain.SceneCatalog)
	}
	t.Session.Step = domain.StepSetQuantity
	return t.Show(ctx, p.quantityPrompt(t.Session.Product, ""))
}

// Leave forgets the product being processed.
func (*ProductProcessing) Leave(_ context.Context, t *Turn) error {
	t.Session.Product = nil
	return nil
}

func (p *ProductProcessing) OnMessage(ctx context.Context, t *Turn, text string) error {
	prod := t.Session.Product
	if prod == nil {
		return p.abort(ctx, t, "An error occurred. Please try adding the product again from the catalog.")
	}

	switch t.Session.Step {
	case domain.StepSetQuantity:
		qty, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return t.Show(ctx, p.quantityPrompt(prod, "Invalid quantity format. Please enter a number."))
		}
		if qty < 1 || qty > prod.Stock {
			return t.Show(ctx, p.quantityPrompt(prod, fmt.Sprintf("Quantity must be between 1 and %d inclusive.", prod.Stock)))
		}
		prod.Quantity = qty
		t.Session.Step = domain.StepConfirm
		return t.Show(ctx, p.confirmView(prod))

	case domain.StepConfirm:
		return t.Show(ctx, p.confirmView(prod))

	default:
		return p.abort(ctx, t, "An error occurred. Please try adding the product again from the catalog.")
	}
}

func (p *ProductProcessing) OnAction(ctx context.Context, t *Turn, action domain.Action) error {
	if action.Kind != domain.ActionCustom {
		return domain.ErrUnhandledAction
	}

	switch action.Target {
	case shop.TokenCancel:
		return p.abort(ctx, t, "Action cancelled.")

	case shop.TokenConfirm:
		prod := t.Session.Product
		if prod == nil || t.Session.Step != domain.StepConfirm || prod.Quantity < 1 {
			return p.abort(ctx, t, "An error occurred. Please try adding the product again.")
		}
		if err := p.m.repo.AddToCart(ctx, t.Session.UserID, prod.ProductID, prod.Quantity); err != nil {
			p.m.logger.Error("Add to cart failed",
				"user_id", t.Session.UserID,
				"product_id", prod.ProductID,
				"err", err,
			)
			return p.abort(ctx, t, "Failed to add product to your cart. Please try again.")
		}
		// Cached cart positions no longer match the cart.
		t.Session.Cart = nil
		return p.abort(ctx, t, "Product added to your cart")
	}
	return domain.ErrUnhandledAction
}

// abort notifies the user and returns to the catalog.
func (p *ProductProcessing) abort(ctx context.Context, t *Turn, notice string) error {
	t.Notify(ctx, notice)
	return t.Goto(ctx, domain.SceneCatalog)
}

func (p *ProductProcessing) quantityPrompt(prod *domain.ProductContext, problem string) domain.View {
	text := fmt.Sprintf("Product in stock: %d\n\nEnter the quantity you want to add to cart:", prod.Stock)
	if problem != "" {
		text = problem
	}
	return domain.View{
		Text: text,
		Keyboard: domain.Keyboard{
			{{Label: "Cancel❌", Action: domain.Custom(shop.TokenCancel)}},
			{{Label: "To Main Menu", Action: domain.Custom(shop.TokenMainMenu)}},
		},
	}
}

func (p *ProductProcessing) confirmView(prod *domain.ProductContext) domain.View {
	var b strings.Builder
	b.WriteString("Please confirm to add the product to your cart.\n")
	fmt.Fprintf(&b, "\n**%s**", prod.Name)
	if prod.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", shop.Truncate(prod.Description, 50))
	}
	fmt.Fprintf(&b, "\n\nPrice per unit: %s", shop.FormatMoney(prod.Price, p.m.currency))
	fmt.Fprintf(&b, "\nUnits: %d", prod.Quantity)
	fmt.Fprintf(&b, "\nTotal price: %s", shop.FormatMoney(prod.Total(), p.m.currency))

	return domain.View{
		Text: b.String(),
		Keyboard: domain.Keyboard{
			{
				{Label: "Cancel❌", Action: domain.Custom(shop.TokenCancel)},
				{Label: "Confirm✅", Action: domain.Custom(shop.TokenConfirm)},
			},
			{{Label: "To Main Menu", Action: domain.Custom(shop.TokenMainMenu)}},
		},
	}
}
