package main

import (
	"net/http"
	"time"

	"github.com/detectivesigma/sigma/internal/contexthelpers"
	"github.com/detectivesigma/sigma/internal/models"
)

// progressResponse is the JSON shape of a progress row. The user never sees
// their opaque WebAuthn id, so it is not part of the payload.
type progressResponse struct {
	CaseID            string     `json:"caseId"`
	Status            string     `json:"status"`
	Score             int        `json:"score"`
	CluesCollected    []string   `json:"cluesCollected"`
	PuzzlesSolved     []string   `json:"puzzlesSolved"`
	CurrentSceneIndex int        `json:"currentSceneIndex"`
	TimeSpentSeconds  int        `json:"timeSpentSeconds"`
	StartedAt         time.Time  `json:"startedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

func toProgressResponse(progress *models.Progress) progressResponse {
	cluesCollected := progress.CluesCollected
	if cluesCollected == nil {
		cluesCollected = []string{}
	}
	puzzlesSolved := progress.PuzzlesSolved
	if puzzlesSolved == nil {
		puzzlesSolved = []string{}
	}
	return progressResponse{
		CaseID:            progress.CaseID,
		Status:            string(progress.Status),
		Score:             progress.Score,
		CluesCollected:    cluesCollected,
		PuzzlesSolved:     puzzlesSolved,
		CurrentSceneIndex: progress.CurrentSceneIndex,
		TimeSpentSeconds:  progress.TimeSpentSeconds,
		StartedAt:         progress.StartedAt,
		CompletedAt:       progress.CompletedAt,
	}
}

// startCase opens a case for the logged-in user. Repeat calls are harmless.
func (app *application) startCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := r.PathValue("caseID")
	userID := contexthelpers.AuthenticatedUserID(ctx)

	// The progress table has a foreign key on cases, but an unknown case
	// should read as 404, not as a constraint violation.
	exists, err := app.cases.Exists(ctx, caseID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !exists {
		app.notFound(w, r)
		return
	}

	progress, err := app.progress.Start(ctx, userID, caseID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{"progress": toProgressResponse(progress)})
}

type progressUpdateRequest struct {
	CluesCollected    []string `json:"cluesCollected"`
	PuzzlesSolved     []string `json:"puzzlesSolved"`
	CurrentSceneIndex *int     `json:"currentSceneIndex"`
	TimeSpentSeconds  *int     `json:"timeSpentSeconds"`
}

// saveProgress merges a partial autosave into the user's progress for the case.
func (app *application) saveProgress(w http.ResponseWriter, r *http.Request) {
	var update progressUpdateRequest
	if err := app.readJSON(w, r, &update); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if update.CurrentSceneIndex != nil && *update.CurrentSceneIndex < 0 {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if update.TimeSpentSeconds != nil && *update.TimeSpentSeconds < 0 {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	caseID := r.PathValue("caseID")
	userID := contexthelpers.AuthenticatedUserID(ctx)

	progress, err := app.progress.Save(ctx, userID, caseID, models.ProgressUpdate{
		CluesCollected:    update.CluesCollected,
		PuzzlesSolved:     update.PuzzlesSolved,
		CurrentSceneIndex: update.CurrentSceneIndex,
		TimeSpentSeconds:  update.TimeSpentSeconds,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{"progress": toProgressResponse(progress)})
}

// getProgress returns the user's progress for the case.
func (app *application) getProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caseID := r.PathValue("caseID")
	userID := contexthelpers.AuthenticatedUserID(ctx)

	progress, err := app.progress.Get(ctx, userID, caseID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{"progress": toProgressResponse(progress)})
}
