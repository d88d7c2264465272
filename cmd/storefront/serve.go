package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cthstore/storefront/internal/cli"
	"github.com/cthstore/storefront/internal/scene"
	"github.com/cthstore/storefront/pkg/adapters/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot with the health and metrics server",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(context.Background())
		defer sc.Cancel()

		app, err := openApp(sc, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		cfg := app.Config
		if cfg.Telegram.Token == "" {
			return errors.New("telegram.token is required (STOREFRONT_TELEGRAM_TOKEN)")
		}
		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			if err := app.Repo.Seed(sc); err != nil {
				return err
			}
		}

		botOpts := []telegram.Option{
			telegram.WithPollTimeout(cfg.Telegram.PollTimeout),
			telegram.WithPaymentToken(cfg.Telegram.PaymentToken),
			telegram.WithLogger(app.Logger),
		}
		if cfg.Subscription.Enabled {
			botOpts = append(botOpts, telegram.WithSubscriptionGate(app.Repo))
		}
		bot, err := telegram.New(cfg.Telegram.Token, botOpts...)
		if err != nil {
			return err
		}

		var machineOpts []scene.Option
		if cfg.Telegram.PaymentToken != "" {
			machineOpts = append(machineOpts, scene.WithCheckout(bot.Renderer()))
		}
		machine := app.Machine(bot.Renderer(), machineOpts...)

		ln, err := net.Listen("tcp", cfg.HTTP.Addr)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Handler:           app.HTTPHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g, ctx := errgroup.WithContext(sc)
		g.Go(func() error {
			return bot.Serve(ctx, machine)
		})
		g.Go(func() error {
			return cli.ServeHTTP(ctx, srv, ln, app.Logger)
		})
		err = g.Wait()

		if sig := sc.Signal(); sig != nil {
			app.Logger.Info("Shutdown complete", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("seed", false, "Seed an empty database with the demo catalog before serving")
}
