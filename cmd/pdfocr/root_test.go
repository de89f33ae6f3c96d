package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/pdf-ocr/config"
)

func TestRootCmd_FlagsOverrideConfig(t *testing.T) {
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--input", "scans/a.pdf", "-w", "4", "--log-level", "debug"}))

	cfg := config.Default()
	for _, opt := range opts.overrides(cmd) {
		opt(cfg)
	}

	assert.Equal(t, "scans/a.pdf", cfg.Input.Path)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "ocr_texts", cfg.Output.Dir)
}

func TestRootCmd_NoFlagsKeepsDefaults(t *testing.T) {
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Empty(t, opts.overrides(cmd))
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	cmd := newRootCmd(&rootOptions{})
	cmd.SetArgs([]string{"extra.pdf"})
	assert.Error(t, cmd.Execute())
}

func TestRootCmd_MissingInputFails(t *testing.T) {
	t.Setenv("PDFOCR_LOG_LEVEL", "error")
	dir := t.TempDir()
	chdir(t, dir)

	cmd := newRootCmd(&rootOptions{})
	cmd.SetArgs([]string{"--input", "missing.pdf", "--output", "out"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "input PDF not found")
}
