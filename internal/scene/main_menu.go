package scene

import (
	"context"

	"github.com/cthstore/storefront/internal/shop"
	"github.com/cthstore/storefront/pkg/domain"
)

// MainMenu is the entry point offering the catalog, the cart and the FAQ.
type MainMenu struct{}

func (*MainMenu) Name() domain.SceneName { return domain.SceneMainMenu }

func (*MainMenu) Enter(ctx context.Context, t *Turn) error {
	return t.Show(ctx, mainMenuView())
}

func (*MainMenu) Leave(context.Context, *Turn) error { return nil }

// OnMessage shows the menu again.
func (*MainMenu) OnMessage(ctx context.Context, t *Turn, _ string) error {
	return t.Show(ctx, mainMenuView())
}

func (*MainMenu) OnAction(ctx context.Context, t *Turn, action domain.Action) error {
	if action.Kind == domain.ActionCustom {
		switch action.Target {
		case shop.TokenCatalog:
			return t.Goto(ctx, domain.SceneCatalog)
		case shop.TokenCart:
			return t.Goto(ctx, domain.SceneCart)
		case shop.TokenFAQ:
			return t.Goto(ctx, domain.SceneFAQ)
		}
	}
	return domain.ErrUnhandledAction
}

func mainMenuView() domain.View {
	return domain.View{
		Text: "Welcome to our CTH Store",
		Keyboard: domain.Keyboard{
			{
				{Label: "Catalog", Action: domain.Custom(shop.TokenCatalog)},
				{Label: "Cart", Action: domain.Custom(shop.TokenCart)},
			},
			{
				{Label: "FAQ", Action: domain.Custom(shop.TokenFAQ)},
			},
		},
	}
}
