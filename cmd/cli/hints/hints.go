// Package hints implements the hint-drafting command. It asks OpenAI for a
// hint for every puzzle that doesn't have one yet and prints the drafts for
// an editor to review.
package hints

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/detectivesigma/sigma/internal/ai"
	"github.com/detectivesigma/sigma/internal/logging"
	"github.com/detectivesigma/sigma/internal/repositories"
	"github.com/detectivesigma/sigma/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "hints",
	Title: "Hint drafting",
}

func init() {
	Draft.Flags().String("sqlite-url", "./sigma.sqlite", "SQLite URL")
}

var Draft = &cobra.Command{ //nolint:exhaustruct
	Use:     "draft [case-id]",
	GroupID: "hints",
	Short:   "Draft puzzle hints",
	Long:    `Drafts hints with OpenAI for every puzzle in the case that has no hint yet`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sqliteURL, err := cmd.Flags().GetString("sqlite-url")
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			return
		}

		logger := slog.New(logging.NewContextHandler(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))) //nolint:exhaustruct

		ctx := cmd.Context()
		dbs, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return
		}
		defer func() {
			_ = dbs.Close()
		}()

		cases := repositories.NewCaseRepository(dbs, logger)
		c, err := cases.Get(ctx, args[0])
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "load case: %v\n", err)
			return
		}

		client := ai.NewClient()
		out := cmd.OutOrStdout()
		for _, puzzle := range c.Puzzles {
			if puzzle.Hint != "" {
				continue
			}
			hint, draftErr := client.DraftHint(ctx, c.Title, puzzle)
			if draftErr != nil {
				_, _ = fmt.Fprintf(os.Stderr, "draft hint for %s: %v\n", puzzle.ID, draftErr)
				continue
			}
			_, _ = fmt.Fprintf(out, "%s: %s\n", puzzle.ID, hint)
		}
	},
}
