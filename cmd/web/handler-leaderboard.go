package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/models"
)

const defaultLeaderboardLimit = 10
const maxLeaderboardLimit = 100

// getLeaderboard serves the ranked scoreboard. The limit query parameter
// defaults to 10 and caps at 100.
func (app *application) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			app.clientError(w, r, http.StatusBadRequest)
			return
		}
		limit = min(parsed, maxLeaderboardLimit)
	}

	entries, err := app.leaderboard.Leaderboard(r.Context(), limit)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{"leaderboard": entries})
}

// streamLeaderboard pushes leaderboard snapshots over SSE: one on connect and
// one after every quiz submission.
func (app *application) streamLeaderboard(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverError(w, r, errors.New("response writer does not support flushing"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	entries, err := app.leaderboard.Leaderboard(ctx, defaultLeaderboardLimit)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "initial leaderboard snapshot failed", errors.SlogError(err))
	} else if err = writeLeaderboardEvent(w, entries); err != nil {
		return
	}
	flusher.Flush()

	subscription := app.leaderboardFeed.Subscribe()
	defer app.leaderboardFeed.Unsubscribe(subscription)

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, open := <-subscription:
			if !open {
				return
			}
			if err = writeLeaderboardEvent(w, snapshot); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeLeaderboardEvent(w http.ResponseWriter, entries []models.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "JSON encode leaderboard event")
	}
	if _, err = fmt.Fprintf(w, "event: leaderboard\ndata: %s\n\n", data); err != nil {
		return errors.Wrap(err, "write leaderboard event")
	}
	return nil
}

// publishLeaderboard refreshes the stream after a quiz submission: the cached
// snapshot is dropped and the new standings fan out to every subscriber. Best
// effort; a failure here never fails the submission.
func (app *application) publishLeaderboard(ctx context.Context) {
	if app.leaderboardCache != nil {
		app.leaderboardCache.Invalidate(ctx)
	}
	entries, err := app.leaderboard.Leaderboard(ctx, defaultLeaderboardLimit)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "refresh leaderboard snapshot failed", errors.SlogError(err))
		return
	}
	app.leaderboardFeed.Publish(entries)
}
