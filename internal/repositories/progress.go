package repositories

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/models"
	"github.com/detectivesigma/sigma/internal/sqlite"
)

// ErrProgressNotFound is returned when no progress row exists for a (user, case) pair.
var ErrProgressNotFound = errors.NewSentinel("progress not found")

type ProgressRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
	now    func() time.Time
}

func NewProgressRepository(dbs *sqlite.Database, logger *slog.Logger) *ProgressRepository {
	return NewProgressRepositoryWithClock(dbs, logger, time.Now)
}

// NewProgressRepositoryWithClock allows deterministic timestamps in tests.
func NewProgressRepositoryWithClock(dbs *sqlite.Database, logger *slog.Logger, now func() time.Time) *ProgressRepository {
	return &ProgressRepository{
		dbs:    dbs,
		logger: logger.With("source", "ProgressRepository"),
		now:    now,
	}
}

type progressRow struct {
	UserID            []byte       `db:"user_id"`
	CaseID            string       `db:"case_id"`
	Status            string       `db:"status"`
	Score             int          `db:"score"`
	CluesCollected    string       `db:"clues_collected"`
	PuzzlesSolved     string       `db:"puzzles_solved"`
	CurrentSceneIndex int          `db:"current_scene_index"`
	TimeSpentSeconds  int          `db:"time_spent_seconds"`
	StartedAt         time.Time    `db:"started_at"`
	CompletedAt       sql.NullTime `db:"completed_at"`
}

func (row progressRow) toModel() (*models.Progress, error) {
	progress := models.Progress{
		UserID:            row.UserID,
		CaseID:            row.CaseID,
		Status:            models.ProgressStatus(row.Status),
		Score:             row.Score,
		CurrentSceneIndex: row.CurrentSceneIndex,
		TimeSpentSeconds:  row.TimeSpentSeconds,
		StartedAt:         row.StartedAt,
	}
	if row.CompletedAt.Valid {
		completedAt := row.CompletedAt.Time
		progress.CompletedAt = &completedAt
	}
	if err := json.Unmarshal([]byte(row.CluesCollected), &progress.CluesCollected); err != nil {
		return nil, errors.Wrap(err, "decode collected clues")
	}
	if err := json.Unmarshal([]byte(row.PuzzlesSolved), &progress.PuzzlesSolved); err != nil {
		return nil, errors.Wrap(err, "decode solved puzzles")
	}
	return &progress, nil
}

const selectProgress = `SELECT user_id,
       case_id,
       status,
       score,
       clues_collected,
       puzzles_solved,
       current_scene_index,
       time_spent_seconds,
       started_at,
       completed_at
FROM progress
WHERE user_id = ? AND case_id = ?`

// Get returns the progress for a (user, case) pair or ErrProgressNotFound.
func (r *ProgressRepository) Get(ctx context.Context, userID []byte, caseID string) (*models.Progress, error) {
	var row progressRow
	if err := r.dbs.ReadOnly.GetContext(ctx, &row, selectProgress, userID, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrProgressNotFound, "read progress",
				slog.String("case_id", caseID), slog.String("user_id", hex.EncodeToString(userID)))
		}
		return nil, errors.Wrap(err, "read progress", slog.String("case_id", caseID))
	}
	return row.toModel()
}

// Start marks a case as opened by the user. The upsert is idempotent: a
// repeat open leaves startedAt and any collected progress untouched, and a
// SOLVED case stays SOLVED.
func (r *ProgressRepository) Start(ctx context.Context, userID []byte, caseID string) (*models.Progress, error) {
	stmt := `INSERT INTO progress (user_id, case_id, status, started_at)
VALUES (?, ?, 'IN_PROGRESS', ?)
ON CONFLICT (user_id, case_id) DO UPDATE
    SET status = CASE WHEN progress.status = 'SOLVED' THEN progress.status ELSE 'IN_PROGRESS' END`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, userID, caseID, r.now()); err != nil {
		return nil, errors.Wrap(err, "upsert progress", slog.String("case_id", caseID))
	}

	var row progressRow
	if err := r.dbs.ReadWrite.GetContext(ctx, &row, selectProgress, userID, caseID); err != nil {
		return nil, errors.Wrap(err, "read started progress", slog.String("case_id", caseID))
	}
	return row.toModel()
}

// Save merges a partial autosave update into the existing progress row.
//
// Only the fields present in the update are touched. Clue and puzzle id sets
// merge as a union, so autosaves that are dropped or arrive out of order
// cannot lose earlier finds. Status is never changed here, so a SOLVED case
// cannot be downgraded by a stale autosave.
func (r *ProgressRepository) Save(
	ctx context.Context,
	userID []byte,
	caseID string,
	update models.ProgressUpdate,
) (*models.Progress, error) {
	// The read-write pool is limited to a single connection, so the
	// read-merge-write below cannot interleave with another writer.
	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "rollback save progress", errors.SlogError(rollbackErr))
		}
	}()

	var row progressRow
	if err = tx.GetContext(ctx, &row, selectProgress, userID, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrProgressNotFound, "save progress", slog.String("case_id", caseID))
		}
		return nil, errors.Wrap(err, "read progress for save", slog.String("case_id", caseID))
	}

	progress, err := row.toModel()
	if err != nil {
		return nil, err
	}

	if update.CluesCollected != nil {
		progress.CluesCollected = unionIDs(progress.CluesCollected, update.CluesCollected)
	}
	if update.PuzzlesSolved != nil {
		progress.PuzzlesSolved = unionIDs(progress.PuzzlesSolved, update.PuzzlesSolved)
	}
	if update.CurrentSceneIndex != nil {
		progress.CurrentSceneIndex = *update.CurrentSceneIndex
	}
	if update.TimeSpentSeconds != nil {
		progress.TimeSpentSeconds = *update.TimeSpentSeconds
	}

	cluesJSON, err := json.Marshal(progress.CluesCollected)
	if err != nil {
		return nil, errors.Wrap(err, "encode collected clues")
	}
	puzzlesJSON, err := json.Marshal(progress.PuzzlesSolved)
	if err != nil {
		return nil, errors.Wrap(err, "encode solved puzzles")
	}

	stmt := `UPDATE progress
SET clues_collected     = ?,
    puzzles_solved      = ?,
    current_scene_index = ?,
    time_spent_seconds  = ?
WHERE user_id = ? AND case_id = ?`
	if _, err = tx.ExecContext(ctx, stmt,
		string(cluesJSON), string(puzzlesJSON),
		progress.CurrentSceneIndex, progress.TimeSpentSeconds,
		userID, caseID); err != nil {
		return nil, errors.Wrap(err, "update progress", slog.String("case_id", caseID))
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit save progress")
	}

	return progress, nil
}

// CompleteQuiz transitions the progress row to SOLVED with the submitted
// quiz score in a single upsert. The score is overwritten, not accumulated:
// the most recent submission is authoritative. Replayed submissions are safe
// because the upsert is idempotent on the (user_id, case_id) key.
func (r *ProgressRepository) CompleteQuiz(
	ctx context.Context,
	userID []byte,
	caseID string,
	score int,
) (*models.Progress, error) {
	now := r.now()
	stmt := `INSERT INTO progress (user_id, case_id, status, score, started_at, completed_at)
VALUES (?, ?, 'SOLVED', ?, ?, ?)
ON CONFLICT (user_id, case_id) DO UPDATE
    SET status       = 'SOLVED',
        score        = excluded.score,
        completed_at = excluded.completed_at`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, userID, caseID, score, now, now); err != nil {
		return nil, errors.Wrap(err, "complete quiz", slog.String("case_id", caseID))
	}

	var row progressRow
	if err := r.dbs.ReadWrite.GetContext(ctx, &row, selectProgress, userID, caseID); err != nil {
		return nil, errors.Wrap(err, "read completed progress", slog.String("case_id", caseID))
	}
	return row.toModel()
}

// Leaderboard aggregates all SOLVED progress rows grouped by user. The
// ordering is a total order: total score descending, cases solved
// descending, then display name ascending.
func (r *ProgressRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	type leaderboardRow struct {
		Username    string `db:"display_name"`
		TotalScore  int    `db:"total_score"`
		CasesSolved int    `db:"cases_solved"`
	}

	var rows []leaderboardRow
	stmt := `SELECT u.display_name,
       SUM(p.score) AS total_score,
       COUNT(*)     AS cases_solved
FROM progress p
         JOIN users u ON u.id = p.user_id
WHERE p.status = 'SOLVED'
GROUP BY p.user_id, u.display_name
ORDER BY total_score DESC, cases_solved DESC, u.display_name ASC
LIMIT ?`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &rows, stmt, limit); err != nil {
		return nil, errors.Wrap(err, "select leaderboard")
	}

	entries := make([]models.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = models.LeaderboardEntry{
			Rank:        i + 1,
			Username:    row.Username,
			TotalScore:  row.TotalScore,
			CasesSolved: row.CasesSolved,
		}
	}
	return entries, nil
}

// unionIDs merges two id lists preserving first-seen order.
func unionIDs(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, id := range existing {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	for _, id := range incoming {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	return merged
}
