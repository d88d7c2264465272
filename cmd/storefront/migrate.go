package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if seed, _ := cmd.Flags().GetBool("seed"); seed {
			if err := app.Repo.Seed(cmd.Context()); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", app.Config.Database.Path)
		return nil
	},
}

var channelCmd = &cobra.Command{
	Use:   "channel <name> <channel-id> <invite-link>",
	Short: "Register a channel users must join when the subscription gate is on",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid channel id %q: %w", args[1], err)
		}
		app, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Repo.AddChannel(cmd.Context(), args[0], id, args[2]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Channel %s (%d) registered\n", args[0], id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(channelCmd)
	// Channel ids are negative; stop flag parsing at the first argument.
	channelCmd.Flags().SetInterspersed(false)
	migrateCmd.Flags().Bool("seed", false, "Fill an empty database with the demo catalog and FAQ")
}
