package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/repositories"
)

// errorResponse writes the JSON error body clients decode on any non-2xx
// status. A map of strings cannot fail to encode.
func (app *application) errorResponse(w http.ResponseWriter, status int, message string) {
	out, _ := json.Marshal(map[string]string{"error": message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	// The error itself stays in the log; clients get the generic message.
	app.errorResponse(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Debug(http.StatusText(status), "method", method, "uri", uri)
	app.errorResponse(w, status, http.StatusText(status))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound)
}

// handleError maps the repository sentinels to HTTP statuses; everything else
// is a server error.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repositories.ErrCaseNotFound), errors.Is(err, repositories.ErrProgressNotFound):
		app.notFound(w, r)
	default:
		app.serverError(w, r, err)
	}
}

// writeJSON encodes data before touching the ResponseWriter, so an encoding
// failure can still return a 500.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	out, err := json.Marshal(data)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "JSON encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

const maxRequestBodyBytes = 1 << 20

// readJSON decodes the request body into dst, rejecting unknown fields and
// oversized bodies.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.Wrap(err, "JSON decode request")
	}
	return nil
}
