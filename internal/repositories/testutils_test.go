package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/detectivesigma/sigma/internal/sqlite"
	"github.com/detectivesigma/sigma/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a fresh in-memory database with the schema and sample case
// content applied. Each test gets its own database, so tests can run in
// parallel.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	dbs, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, dbs.Close())
	})
	return dbs
}

func seedUser(t *testing.T, dbs *sqlite.Database, id []byte, displayName string) {
	t.Helper()
	_, err := dbs.ReadWrite.ExecContext(context.Background(),
		`INSERT INTO users (id, display_name) VALUES (?, ?)`, id, displayName)
	require.NoError(t, err)
}
