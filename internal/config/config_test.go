package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "tiny", cfg.Model)
	require.Equal(t, 4, cfg.Engine.Threads)
	require.False(t, cfg.Engine.UseGPU)
	require.True(t, cfg.Silence.Gate)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
model: base
language: zh
engine:
  threads: 8
  use_gpu: true
silence:
  gate: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "base", cfg.Model)
	require.Equal(t, "zh", cfg.Language)
	require.Equal(t, 8, cfg.Engine.Threads)
	require.True(t, cfg.Engine.UseGPU)
	require.False(t, cfg.Silence.Gate)
	require.Equal(t, -65.0, cfg.Silence.ThresholdDBFS)
	require.True(t, cfg.AutoDownload)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg, err := Load(writeConfig(t, "model_dir: ~/models\n"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "models"), cfg.ModelDir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "zero threads", content: "engine:\n  threads: 0\n", errMsg: "engine.threads"},
		{name: "bad log level", content: "log_level: loud\n", errMsg: "log_level"},
		{name: "empty model", content: "model: \"\"\n", errMsg: "model must not be empty"},
		{name: "positive threshold", content: "silence:\n  threshold_dbfs: 3\n", errMsg: "threshold_dbfs"},
		{name: "malformed yaml", content: "engine: [", errMsg: "parsing config file"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := Load(missing)
	require.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOptional(missing)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}
