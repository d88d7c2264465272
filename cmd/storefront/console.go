package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/cthstore/storefront"
	"github.com/cthstore/storefront/internal/cli"
	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/pkg/adapters/console"
	"github.com/cthstore/storefront/pkg/domain"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Talk to the storefront from the terminal",
	Long: `Runs the same scenes as the bot against the configured database and
session store. Press buttons with #n (for example #1), type anything else
as a chat message, and leave with quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(context.Background())
		defer sc.Cancel()

		var opts []storefront.Option
		if debug, _ := cmd.Flags().GetBool("debug"); !debug {
			opts = append(opts, storefront.WithLogger(logging.NewNop()))
		}
		app, err := openApp(sc, cmd, opts...)
		if err != nil {
			return err
		}
		defer app.Close()

		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			if err := app.Repo.Seed(sc); err != nil {
				return err
			}
		}

		userID, _ := cmd.Flags().GetInt64("user")
		name, _ := cmd.Flags().GetString("name")
		interactive := console.IsTerminal(os.Stdin)
		renderer := console.NewRenderer(os.Stdout, interactive)

		session := &console.Session{
			Machine:  app.Machine(renderer),
			Renderer: renderer,
			User:     domain.User{ID: userID, FirstName: name},
			Version:  storefront.Version,
		}
		return session.Run(sc, os.Stdin, interactive)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().Int64("user", 1, "User id to chat as")
	consoleCmd.Flags().String("name", os.Getenv("USER"), "First name used in the greeting")
	consoleCmd.Flags().Bool("seed", true, "Seed an empty database with the demo catalog")
	consoleCmd.Flags().Bool("debug", false, "Log to stderr")
}
