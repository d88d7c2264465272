package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cthstore/storefront"
	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/internal/presentation/graph"
	"github.com/cthstore/storefront/pkg/domain"
)

var sessionCmd = &cobra.Command{
	Use:   "session [user-id]",
	Short: "List stored sessions or inspect one",
	Long: `Without arguments, lists the ids of stored sessions. With a user id,
prints the session's scene and step, and each scene's navigation tree as a
Mermaid flowchart when --graph is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd.Context(), cmd, storefront.WithLogger(logging.NewNop()))
		if err != nil {
			return err
		}
		defer app.Close()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			ids, err := app.Sessions.List(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		}

		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}
		sess, err := app.Sessions.Load(cmd.Context(), userID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("no session for user %d", userID)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "user:    %d\nchat:    %d\nscene:   %s\n", sess.UserID, sess.ChatID, sess.Scene)
		if sess.Step != domain.StepNone {
			fmt.Fprintf(out, "step:    %s\n", sess.Step)
		}
		fmt.Fprintf(out, "updated: %s\n", sess.UpdatedAt.Format("2006-01-02 15:04:05"))

		if withGraph, _ := cmd.Flags().GetBool("graph"); withGraph {
			for _, tree := range []struct {
				name string
				snap *domain.Snapshot
			}{
				{"catalog", catalogSnapshot(sess)},
				{"cart", cartSnapshot(sess)},
				{"faq", faqSnapshot(sess)},
			} {
				if tree.snap == nil {
					continue
				}
				fmt.Fprintf(out, "\n%%%% %s\n%s", tree.name, graph.GenerateMermaid(tree.snap))
			}
		}
		return nil
	},
}

func catalogSnapshot(s *domain.Session) *domain.Snapshot {
	if s.Catalog == nil {
		return nil
	}
	return s.Catalog.Engine
}

func cartSnapshot(s *domain.Session) *domain.Snapshot {
	if s.Cart == nil {
		return nil
	}
	return s.Cart.Engine
}

func faqSnapshot(s *domain.Session) *domain.Snapshot {
	if s.FAQ == nil {
		return nil
	}
	return s.FAQ.Engine
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.Flags().Bool("graph", false, "Print navigation trees as Mermaid flowcharts")
}
