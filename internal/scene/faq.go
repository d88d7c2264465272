package scene

import (
	"context"

	"github.com/cthstore/storefront/internal/navigation"
	"github.com/cthstore/storefront/internal/shop"
	"github.com/cthstore/storefront/pkg/domain"
)

// FAQ browses questions. A text message searches them.
type FAQ struct {
	m *Machine
}

func (*FAQ) Name() domain.SceneName { return domain.SceneFAQ }

func (f *FAQ) engine(t *Turn) *navigation.Engine {
	var snap *domain.Snapshot
	if t.Session.FAQ != nil {
		snap = t.Session.FAQ.Engine
	}
	return t.engine(snap, func() domain.Node { return shop.FAQRoot(f.m.pageSize) },
		navigation.WithSource(f.m.faqSource),
		navigation.WithFormatter(shop.FormatFAQ),
	)
}

func (f *FAQ) save(t *Turn, e *navigation.Engine, err error) error {
	if persist(err) {
		t.Session.FAQ = &domain.FAQContext{
			Engine: e.Snapshot(),
			Search: e.Root().MetaValue(shop.MetaSearch),
		}
	}
	return err
}

func (f *FAQ) Enter(ctx context.Context, t *Turn) error {
	e := f.engine(t)
	_, err := e.Render(ctx, t.Target)
	return f.save(t, e, err)
}

func (*FAQ) Leave(context.Context, *Turn) error { return nil }

// OnMessage searches the questions for text.
func (f *FAQ) OnMessage(ctx context.Context, t *Turn, text string) error {
	if text == "" {
		return errUnexpectedInput
	}
	e := f.engine(t)
	e.JumpToRoot()
	root := e.Root()
	root.SetMeta(shop.MetaSearch, text)
	root.AddAction("Clear search", shop.TokenFAQClear)
	e.ResetCurrent()

	_, err := e.Render(ctx, t.Target)
	return f.save(t, e, err)
}

func (f *FAQ) OnAction(ctx context.Context, t *Turn, action domain.Action) error {
	e := f.engine(t)
	if action.IsNavigation() {
		_, err := e.Handle(ctx, t.Target, action)
		return f.save(t, e, err)
	}
	if action.Target != shop.TokenFAQClear {
		return domain.ErrUnhandledAction
	}

	e.JumpToRoot()
	root := e.Root()
	root.DeleteMeta(shop.MetaSearch)
	root.RemoveAction(shop.TokenFAQClear)
	e.ResetCurrent()
	t.Notify(ctx, "Search query removed.")

	_, err := e.Render(ctx, t.Target)
	return f.save(t, e, err)
}
