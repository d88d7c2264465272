package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cthstore/storefront"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of storefront",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "storefront version %s\n", strings.TrimSpace(storefront.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
