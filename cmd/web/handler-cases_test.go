package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListCases(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, io.Discard, testLookupEnv)

	var payload struct {
		Cases []struct {
			ID         string `json:"id"`
			Title      string `json:"title"`
			Difficulty string `json:"difficulty"`
		} `json:"cases"`
	}
	server.GetJSON(t, "/api/cases", &payload)
	require.Len(t, payload.Cases, 1)
	require.Equal(t, sampleCaseID, payload.Cases[0].ID)
	require.Equal(t, "beginner", payload.Cases[0].Difficulty)
}

func TestGetCase(t *testing.T) {
	t.Parallel()
	server := startTestServer(t, io.Discard, testLookupEnv)

	var payload struct {
		Case struct {
			ID     string `json:"id"`
			Scenes []struct {
				ID    string `json:"id"`
				Clues []struct {
					ID string `json:"id"`
				} `json:"clues"`
			} `json:"scenes"`
			Puzzles []map[string]any `json:"puzzles"`
			Suspects []string        `json:"suspects"`
		} `json:"case"`
	}
	server.GetJSON(t, "/api/cases/"+sampleCaseID, &payload)
	require.Equal(t, sampleCaseID, payload.Case.ID)
	require.Len(t, payload.Case.Scenes, 2)
	require.Len(t, payload.Case.Suspects, 4)
	require.Len(t, payload.Case.Puzzles, 3)
	// The case payload must not leak the answer key.
	for _, puzzle := range payload.Case.Puzzles {
		require.NotContains(t, puzzle, "correctAnswer")
	}

	resp := server.Get(t, "/api/cases/missing-case")
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
