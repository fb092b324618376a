package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/models"
	"github.com/detectivesigma/sigma/internal/sqlite"
)

// ErrCaseNotFound is returned when a case id does not exist in the content store.
var ErrCaseNotFound = errors.NewSentinel("case not found")

type CaseRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewCaseRepository(dbs *sqlite.Database, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		dbs:    dbs,
		logger: logger.With("source", "CaseRepository"),
	}
}

// List returns all cases without their nested content, for the case-selection screen.
func (r *CaseRepository) List(ctx context.Context) ([]models.Case, error) {
	var cases []models.Case
	stmt := `SELECT id, title, description, difficulty FROM cases ORDER BY title`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &cases, stmt); err != nil {
		return nil, errors.Wrap(err, "select cases")
	}
	return cases, nil
}

// Get loads a case with its scenes, clues, puzzles, and suspects.
func (r *CaseRepository) Get(ctx context.Context, caseID string) (*models.Case, error) {
	var (
		c   models.Case
		err error
	)

	stmt := `SELECT id, title, description, difficulty FROM cases WHERE id = ?`
	if err = r.dbs.ReadOnly.GetContext(ctx, &c, stmt, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrCaseNotFound, "read case", slog.String("case_id", caseID))
		}
		return nil, errors.Wrap(err, "read case", slog.String("case_id", caseID))
	}

	if c.Scenes, err = r.scenes(ctx, caseID); err != nil {
		return nil, errors.Wrap(err, "read scenes", slog.String("case_id", caseID))
	}
	if c.Puzzles, err = r.puzzles(ctx, caseID); err != nil {
		return nil, errors.Wrap(err, "read puzzles", slog.String("case_id", caseID))
	}

	stmt = `SELECT id, case_id, name, is_culprit FROM suspects WHERE case_id = ? ORDER BY id`
	if err = r.dbs.ReadOnly.SelectContext(ctx, &c.Suspects, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select suspects", slog.String("case_id", caseID))
	}

	return &c, nil
}

func (r *CaseRepository) scenes(ctx context.Context, caseID string) ([]models.Scene, error) {
	var scenes []models.Scene
	stmt := `SELECT id, case_id, title, description, scene_index
FROM scenes
WHERE case_id = ?
ORDER BY scene_index`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &scenes, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select scenes")
	}

	for i := range scenes {
		stmt = `SELECT id, scene_id, title, description FROM clues WHERE scene_id = ? ORDER BY id`
		if err := r.dbs.ReadOnly.SelectContext(ctx, &scenes[i].Clues, stmt, scenes[i].ID); err != nil {
			return nil, errors.Wrap(err, "select clues", slog.String("scene_id", scenes[i].ID))
		}
	}

	return scenes, nil
}

func (r *CaseRepository) puzzles(ctx context.Context, caseID string) ([]models.Puzzle, error) {
	type puzzleRow struct {
		ID            string `db:"id"`
		CaseID        string `db:"case_id"`
		Question      string `db:"question"`
		CorrectAnswer string `db:"correct_answer"`
		Points        int    `db:"points"`
		Options       string `db:"options"`
		Hint          string `db:"hint"`
	}

	var rows []puzzleRow
	stmt := `SELECT id, case_id, question, correct_answer, points, options, hint
FROM puzzles
WHERE case_id = ?
ORDER BY id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select puzzles")
	}

	puzzles := make([]models.Puzzle, len(rows))
	for i, row := range rows {
		puzzle := models.Puzzle{
			ID:            row.ID,
			CaseID:        row.CaseID,
			Question:      row.Question,
			CorrectAnswer: row.CorrectAnswer,
			Points:        row.Points,
			Hint:          row.Hint,
		}
		if err := json.Unmarshal([]byte(row.Options), &puzzle.Options); err != nil {
			return nil, errors.Wrap(err, "decode puzzle options", slog.String("puzzle_id", puzzle.ID))
		}
		puzzles[i] = puzzle
	}

	return puzzles, nil
}

// Exists reports whether a case id is present in the content store.
func (r *CaseRepository) Exists(ctx context.Context, caseID string) (bool, error) {
	stmt := `SELECT EXISTS(SELECT 1 FROM cases WHERE id = ?)`
	var exists bool
	if err := r.dbs.ReadOnly.GetContext(ctx, &exists, stmt, caseID); err != nil {
		return false, errors.Wrap(err, "query case exists")
	}
	return exists, nil
}
