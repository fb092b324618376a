package main

import (
	"net/http"

	"github.com/detectivesigma/sigma/internal/contexthelpers"
)

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// csrfToken hands the session's CSRF token to the client, which echoes it in
// the X-CSRF-Token header on mutating requests.
func (app *application) csrfToken(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, map[string]string{
		"csrfToken": contexthelpers.CSRFToken(r.Context()),
	})
}
