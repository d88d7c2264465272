package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/cthstore/storefront/internal/navigation"
	"github.com/cthstore/storefront/internal/shop"
	"github.com/cthstore/storefront/pkg/domain"
)

// Catalog browses categories and products.
type Catalog struct {
	m *Machine
}

func (*Catalog) Name() domain.SceneName { return domain.SceneCatalog }

func (c *Catalog) engine(t *Turn) *navigation.Engine {
	var snap *domain.Snapshot
	if t.Session.Catalog != nil {
		snap = t.Session.Catalog.Engine
	}
	return t.engine(snap, func() domain.Node { return shop.CatalogRoot(c.m.pageSize) },
		navigation.WithSource(c.m.catalogSource),
	)
}

func (c *Catalog) save(t *Turn, e *navigation.Engine, err error) error {
	if persist(err) {
		t.Session.Catalog = &domain.CatalogContext{Engine: e.Snapshot()}
	}
	return err
}

func (c *Catalog) Enter(ctx context.Context, t *Turn) error {
	e := c.engine(t)
	_, err := e.Render(ctx, t.Target)
	return c.save(t, e, err)
}

func (*Catalog) Leave(context.Context, *Turn) error { return nil }

func (*Catalog) OnMessage(context.Context, *Turn, string) error {
	return errUnexpectedInput
}

func (c *Catalog) OnAction(ctx context.Context, t *Turn, action domain.Action) error {
	if action.IsNavigation() {
		e := c.engine(t)
		_, err := e.Handle(ctx, t.Target, action)
		return c.save(t, e, err)
	}

	productID, ok := shop.ParseAddToken(action.Target)
	if !ok {
		return domain.ErrUnhandledAction
	}
	p, err := c.m.repo.Product(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		t.Notify(ctx, "Error: Product not found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load product %d: %w", productID, err)
	}
	if p.Stock <= 0 {
		t.Notify(ctx, "Sorry, this product is out of stock.")
		return nil
	}

	t.Session.Product = &domain.ProductContext{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}
	return t.Goto(ctx, domain.SceneProduct)
}
