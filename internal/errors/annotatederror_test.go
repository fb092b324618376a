package errors

import (
	"github.com/stretchr/testify/require"
	"log/slog"
	"slices"
	"testing"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors works as expected.
	sentinel := NewSentinel("sentinel error")
	require.NotErrorIs(t, err, NewSentinel("sentinel error"))
	wrapped := Wrap(sentinel, "additional context")
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "additional context: sentinel error", wrapped.Error())

	// Ensure log values are coming through.
	var annotated *AnnotatedError
	require.True(t, As(err, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source.
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.NotEqual(t, -1, sourceIdx)
	source := group[sourceIdx]
	require.Contains(t, source.Value.String(), "annotatederror_test.go")
}

func TestWrapChain(t *testing.T) {
	sentinel := NewSentinel("not found")
	err := Wrap(Wrap(sentinel, "inner"), "outer", slog.String("case_id", "mystery-1"))
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, "outer: inner: not found", err.Error())
}
