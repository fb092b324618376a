package main

import (
	"net/http"

	"github.com/detectivesigma/sigma/internal/contexthelpers"
)

// getQuiz serves the question set for a case, identified by the caseId query
// parameter.
func (app *application) getQuiz(w http.ResponseWriter, r *http.Request) {
	caseID := r.URL.Query().Get("caseId")
	if caseID == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	quiz, err := app.scoring.Quiz(r.Context(), caseID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{"quiz": quiz})
}

type quizSubmission struct {
	CaseID  string            `json:"caseId"`
	Answers map[string]string `json:"answers"`
}

// submitQuiz grades a submission, records the SOLVED progress, and pushes a
// fresh leaderboard snapshot to stream subscribers.
func (app *application) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var submission quizSubmission
	if err := app.readJSON(w, r, &submission); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if submission.CaseID == "" || submission.Answers == nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	userID := contexthelpers.AuthenticatedUserID(ctx)
	result, err := app.scoring.Submit(ctx, userID, submission.CaseID, submission.Answers)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.publishLeaderboard(ctx)

	app.writeJSON(w, r, http.StatusOK, map[string]any{"submission": result})
}
