// Package content implements the case-content seeding command. Authors write
// cases as JSON documents; seeding upserts them into the SQLite content
// store, so re-running a seed updates the case in place.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/logging"
	"github.com/detectivesigma/sigma/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "content",
	Title: "Case content",
}

func init() {
	Seed.Flags().String("sqlite-url", "./sigma.sqlite", "SQLite URL")
}

var Seed = &cobra.Command{ //nolint:exhaustruct
	Use:     "seed [case.json...]",
	GroupID: "content",
	Short:   "Seed case content",
	Long:    `Loads authored case documents into the content store, replacing cases with matching ids`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sqliteURL, err := cmd.Flags().GetString("sqlite-url")
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			return
		}

		logger := slog.New(logging.NewContextHandler(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))) //nolint:exhaustruct

		ctx := cmd.Context()
		dbs, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "open database: %v\n", err)
			return
		}
		defer func() {
			_ = dbs.Close()
		}()

		for _, path := range args {
			if err = seedFile(ctx, dbs, path); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "seed %s: %v\n", path, err)
				return
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", path)
		}
	},
}

type caseDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Scenes      []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		SceneIndex  int    `json:"sceneIndex"`
		Clues       []struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"clues"`
	} `json:"scenes"`
	Puzzles []struct {
		ID            string   `json:"id"`
		Question      string   `json:"question"`
		CorrectAnswer string   `json:"correctAnswer"`
		Points        int      `json:"points"`
		Options       []string `json:"options"`
		Hint          string   `json:"hint"`
	} `json:"puzzles"`
	Suspects []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		IsCulprit bool   `json:"isCulprit"`
	} `json:"suspects"`
}

func (doc *caseDocument) validate() error {
	if doc.ID == "" || doc.Title == "" {
		return errors.New("case id and title are required")
	}
	culprits := 0
	for _, suspect := range doc.Suspects {
		if suspect.IsCulprit {
			culprits++
		}
	}
	if culprits != 1 {
		return errors.New("case must flag exactly one culprit", slog.Int("culprits", culprits))
	}
	for _, puzzle := range doc.Puzzles {
		if puzzle.Points <= 0 {
			return errors.New("puzzle points must be positive", slog.String("puzzle_id", puzzle.ID))
		}
		if len(puzzle.Options) > 0 {
			found := false
			for _, option := range puzzle.Options {
				if option == puzzle.CorrectAnswer {
					found = true
				}
			}
			if !found {
				return errors.New("authored options must include the correct answer",
					slog.String("puzzle_id", puzzle.ID))
			}
		}
	}
	return nil
}

func seedFile(ctx context.Context, dbs *sqlite.Database, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open case document")
	}
	defer func() {
		_ = file.Close()
	}()

	var doc caseDocument
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&doc); err != nil {
		return errors.Wrap(err, "decode case document")
	}
	if _, err = decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after case document")
	}
	if err = doc.validate(); err != nil {
		return errors.Wrap(err, "validate case document")
	}

	return upsertCase(ctx, dbs, doc)
}

// upsertCase replaces the case content in one transaction. The case row is
// upserted in place, never deleted: player progress references it with a
// cascading foreign key, and editorial fixes must not wipe scores. Only the
// child content tables are cleared; clues cascade from their scenes.
func upsertCase(ctx context.Context, dbs *sqlite.Database, doc caseDocument) error {
	tx, err := dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO cases (id, title, description, difficulty) VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE
    SET title       = excluded.title,
        description = excluded.description,
        difficulty  = excluded.difficulty`,
		doc.ID, doc.Title, doc.Description, doc.Difficulty); err != nil {
		return errors.Wrap(err, "upsert case")
	}
	for _, stmt := range []string{
		`DELETE FROM scenes WHERE case_id = ?`,
		`DELETE FROM puzzles WHERE case_id = ?`,
		`DELETE FROM suspects WHERE case_id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, stmt, doc.ID); err != nil {
			return errors.Wrap(err, "clear previous case content")
		}
	}

	for _, scene := range doc.Scenes {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO scenes (id, case_id, title, description, scene_index) VALUES (?, ?, ?, ?, ?)`,
			scene.ID, doc.ID, scene.Title, scene.Description, scene.SceneIndex); err != nil {
			return errors.Wrap(err, "insert scene", slog.String("scene_id", scene.ID))
		}
		for _, clue := range scene.Clues {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO clues (id, scene_id, title, description) VALUES (?, ?, ?, ?)`,
				clue.ID, scene.ID, clue.Title, clue.Description); err != nil {
				return errors.Wrap(err, "insert clue", slog.String("clue_id", clue.ID))
			}
		}
	}

	for _, puzzle := range doc.Puzzles {
		options := puzzle.Options
		if options == nil {
			options = []string{}
		}
		var encodedOptions []byte
		if encodedOptions, err = json.Marshal(options); err != nil {
			return errors.Wrap(err, "encode puzzle options")
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO puzzles (id, case_id, question, correct_answer, points, options, hint)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			puzzle.ID, doc.ID, puzzle.Question, puzzle.CorrectAnswer,
			puzzle.Points, string(encodedOptions), puzzle.Hint); err != nil {
			return errors.Wrap(err, "insert puzzle", slog.String("puzzle_id", puzzle.ID))
		}
	}

	for _, suspect := range doc.Suspects {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO suspects (id, case_id, name, is_culprit) VALUES (?, ?, ?, ?)`,
			suspect.ID, doc.ID, suspect.Name, suspect.IsCulprit); err != nil {
			return errors.Wrap(err, "insert suspect", slog.String("suspect_id", suspect.ID))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit case")
	}
	return nil
}
