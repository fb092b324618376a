package content

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/detectivesigma/sigma/internal/models"
	"github.com/detectivesigma/sigma/internal/repositories"
	"github.com/detectivesigma/sigma/internal/sqlite"
	"github.com/detectivesigma/sigma/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

const caseDoc = `{
  "id": "void-deck-vandal",
  "title": "The Void Deck Vandal",
  "description": "Someone painted over the block 12 mural overnight.",
  "difficulty": "intermediate",
  "scenes": [
    {
      "id": "void-deck",
      "title": "Void Deck",
      "description": "Fresh paint covers half the mural.",
      "sceneIndex": 0,
      "clues": [
        {"id": "paint-can", "title": "Paint Can", "description": "A half-empty can of grey paint."}
      ]
    }
  ],
  "puzzles": [
    {
      "id": "vandal-area",
      "question": "The mural is 6 metres wide and 2 metres tall. What area was painted over if half is covered?",
      "correctAnswer": "6",
      "points": 10,
      "options": [],
      "hint": ""
    }
  ],
  "suspects": [
    {"id": "contractor", "name": "The Contractor", "isCulprit": true},
    {"id": "neighbour", "name": "The Neighbour", "isCulprit": false}
  ]
}`

func writeCaseDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestSeedFile(t *testing.T) {
	ctx := context.Background()
	dbs, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dbs.Close()
	})

	require.NoError(t, seedFile(ctx, dbs, writeCaseDoc(t, caseDoc)))

	cases := repositories.NewCaseRepository(dbs, testhelpers.NewLogger(io.Discard))
	c, err := cases.Get(ctx, "void-deck-vandal")
	require.NoError(t, err)
	require.Equal(t, "The Void Deck Vandal", c.Title)
	require.Len(t, c.Scenes, 1)
	require.Len(t, c.Scenes[0].Clues, 1)
	require.Len(t, c.Puzzles, 1)
	require.Len(t, c.Suspects, 2)
	culprit, ok := c.Culprit()
	require.True(t, ok)
	require.Equal(t, "The Contractor", culprit.Name)

	// Re-seeding replaces the case in place.
	require.NoError(t, seedFile(ctx, dbs, writeCaseDoc(t, caseDoc)))
	c, err = cases.Get(ctx, "void-deck-vandal")
	require.NoError(t, err)
	require.Len(t, c.Suspects, 2)
}

func TestSeedFileKeepsProgress(t *testing.T) {
	ctx := context.Background()
	dbs, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dbs.Close()
	})

	require.NoError(t, seedFile(ctx, dbs, writeCaseDoc(t, caseDoc)))

	userID := []byte("seed-test-user")
	_, err = dbs.ReadWrite.ExecContext(ctx,
		`INSERT INTO users (id, display_name) VALUES (?, ?)`, userID, "Detective Seed")
	require.NoError(t, err)

	progress := repositories.NewProgressRepository(dbs, testhelpers.NewLogger(io.Discard))
	_, err = progress.CompleteQuiz(ctx, userID, "void-deck-vandal", 30)
	require.NoError(t, err)

	// An editorial fix to the case document must not wipe player scores.
	require.NoError(t, seedFile(ctx, dbs, writeCaseDoc(t, caseDoc)))
	p, err := progress.Get(ctx, userID, "void-deck-vandal")
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusSolved, p.Status)
	require.Equal(t, 30, p.Score)
}

func TestSeedFileValidation(t *testing.T) {
	ctx := context.Background()
	dbs, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dbs.Close()
	})

	noCulprit := `{
  "id": "no-culprit",
  "title": "No Culprit",
  "suspects": [{"id": "a", "name": "A", "isCulprit": false}]
}`
	err = seedFile(ctx, dbs, writeCaseDoc(t, noCulprit))
	require.ErrorContains(t, err, "exactly one culprit")

	badPoints := `{
  "id": "bad-points",
  "title": "Bad Points",
  "puzzles": [{"id": "p", "question": "q", "correctAnswer": "a", "points": 0}],
  "suspects": [{"id": "a", "name": "A", "isCulprit": true}]
}`
	err = seedFile(ctx, dbs, writeCaseDoc(t, badPoints))
	require.ErrorContains(t, err, "points must be positive")
}
