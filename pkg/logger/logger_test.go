package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(WithLevel("loud"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse log level")
}

func TestNewLogger_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	log, err := NewLogger(
		WithEncoding("json"),
		WithOutputPaths([]string{path}),
	)
	require.NoError(t, err)

	log.Info("page written", Int("page", 3))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"page written"`)
	assert.Contains(t, string(data), `"page":3`)
}

func TestTestLogger_ChildrenShareEntries(t *testing.T) {
	root := NewTestLogger()
	child := root.Named("ocr").With(String("run_id", "abc"))

	child.Warn("fallback used")
	root.Info("done")

	entries := root.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "ocr", entries[0].Logger)
	assert.Len(t, entries[0].Fields, 1)

	_, ok := root.Find("WARN", "fallback used")
	assert.True(t, ok)

	root.Clear()
	assert.Empty(t, root.GetEntries())
}

func TestFromContext(t *testing.T) {
	fallback := NewTestLogger()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	stored := NewTestLogger()
	ctx := IntoContext(context.Background(), stored)
	assert.Same(t, stored, FromContext(ctx, fallback))
}
