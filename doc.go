/*
Package storefront runs a chat storefront: a conversational shop where users
browse a category tree, fill a cart, pay for it and search an FAQ, all
through inline buttons on a single message.

# Architecture

The conversation is a scene state machine (internal/scene) whose scenes
drive a paginated navigation engine (internal/navigation). The engine keeps
an arena tree of nodes loaded lazily from data sources and turns the current
position into a View: text, optional image and a button keyboard. Renderers
deliver views to a transport (Telegram or a local console). Every user event
runs as a serialized turn under the session manager (pkg/session), and the
session, including each scene's engine snapshot, is persisted between turns
in a SessionStore (memory or Redis, optionally AES-GCM encrypted).

# Usage

	cfg, err := config.Load("storefront.yaml")
	if err != nil {
		log.Fatal(err)
	}
	app, err := storefront.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	bot, err := telegram.New(cfg.Telegram.Token, telegram.WithPaymentToken(cfg.Telegram.PaymentToken))
	if err != nil {
		log.Fatal(err)
	}
	machine := app.Machine(bot.Renderer(), scene.WithCheckout(bot.Renderer()))
	_ = bot.Serve(ctx, machine)

The cmd/storefront binary wires exactly this, plus the health and metrics
HTTP server.
*/
package storefront
