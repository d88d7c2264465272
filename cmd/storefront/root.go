package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cthstore/storefront"
	"github.com/cthstore/storefront/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront is a button-driven chat shop",
	Long: `Storefront runs a conversational shop: catalog browsing, cart, checkout
and FAQ search over Telegram, or locally in the terminal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML configuration file")
}

// loadConfig reads the --config file and STOREFRONT_* overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// openApp loads the configuration and opens the application.
func openApp(ctx context.Context, cmd *cobra.Command, opts ...storefront.Option) (*storefront.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storefront.New(ctx, cfg, opts...)
}
