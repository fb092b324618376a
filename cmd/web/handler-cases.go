package main

import (
	"net/http"

	"github.com/detectivesigma/sigma/internal/models"
)

type caseSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

type clueResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type sceneResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	SceneIndex  int            `json:"sceneIndex"`
	Clues       []clueResponse `json:"clues"`
}

// puzzleResponse deliberately omits the correct answer; the quiz endpoint
// owns the answer key.
type puzzleResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Points   int    `json:"points"`
	Hint     string `json:"hint"`
}

type caseResponse struct {
	caseSummary
	Scenes   []sceneResponse  `json:"scenes"`
	Puzzles  []puzzleResponse `json:"puzzles"`
	Suspects []string         `json:"suspects"`
}

// listCases serves the case-selection screen.
func (app *application) listCases(w http.ResponseWriter, r *http.Request) {
	cases, err := app.cases.List(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	summaries := make([]caseSummary, len(cases))
	for i, c := range cases {
		summaries[i] = caseSummary{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Difficulty:  c.Difficulty,
		}
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"cases": summaries})
}

// getCase serves one case with its scenes, clues, puzzles, and suspect roster.
func (app *application) getCase(w http.ResponseWriter, r *http.Request) {
	c, err := app.cases.Get(r.Context(), r.PathValue("caseID"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{"case": toCaseResponse(c)})
}

func toCaseResponse(c *models.Case) caseResponse {
	response := caseResponse{
		caseSummary: caseSummary{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Difficulty:  c.Difficulty,
		},
		Scenes:   make([]sceneResponse, len(c.Scenes)),
		Puzzles:  make([]puzzleResponse, len(c.Puzzles)),
		Suspects: c.SuspectNames(),
	}
	for i, scene := range c.Scenes {
		clues := make([]clueResponse, len(scene.Clues))
		for j, clue := range scene.Clues {
			clues[j] = clueResponse{ID: clue.ID, Title: clue.Title, Description: clue.Description}
		}
		response.Scenes[i] = sceneResponse{
			ID:          scene.ID,
			Title:       scene.Title,
			Description: scene.Description,
			SceneIndex:  scene.SceneIndex,
			Clues:       clues,
		}
	}
	for i, puzzle := range c.Puzzles {
		response.Puzzles[i] = puzzleResponse{
			ID:       puzzle.ID,
			Question: puzzle.Question,
			Points:   puzzle.Points,
			Hint:     puzzle.Hint,
		}
	}
	return response
}
