package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("UIGEN_ADDR", "")
	t.Setenv("UIGEN_LOG_LEVEL", "")
	t.Setenv("UIGEN_MAX_STEPS", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 15*time.Millisecond, cfg.GetModelDelay())
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeout())
}

func TestLoadFile(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("UIGEN_ADDR", "")
	t.Setenv("UIGEN_LOG_LEVEL", "")
	t.Setenv("UIGEN_MAX_STEPS", "")

	path := filepath.Join(t.TempDir(), "uigen.yaml")
	content := `
model:
  delay: 0s
agent:
  max_steps: 4
server:
  addr: 127.0.0.1:9000
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.Model.APIKey)
	assert.Zero(t, cfg.GetModelDelay())
	assert.Equal(t, 4, cfg.Agent.MaxSteps)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("UIGEN_LOG_LEVEL", "")
	t.Setenv("UIGEN_MAX_STEPS", "")

	type testCase struct {
		name    string
		content string
	}

	testCases := []testCase{
		{name: "malformed yaml", content: "agent: ["},
		{name: "zero steps", content: "agent:\n  max_steps: 0\n"},
		{name: "bad level", content: "logging:\n  level: loud\n"},
		{name: "bad delay", content: "model:\n  delay: soon\n"},
		{name: "negative timeout", content: "server:\n  shutdown_timeout: -1s\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "uigen.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("UIGEN_ADDR", ":9999")
	t.Setenv("UIGEN_LOG_LEVEL", "warn")
	t.Setenv("UIGEN_MAX_STEPS", "3")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "ant-key", cfg.Model.APIKey)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Agent.MaxSteps)

	t.Run("malformed step count is ignored", func(t *testing.T) {
		t.Setenv("UIGEN_MAX_STEPS", "many")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, 10, cfg.Agent.MaxSteps)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("UIGEN_ADDR", "")
	t.Setenv("UIGEN_LOG_LEVEL", "")
	t.Setenv("UIGEN_MAX_STEPS", "")

	path := filepath.Join(t.TempDir(), "nested", "uigen.yaml")
	cfg := DefaultConfig()
	cfg.Agent.MaxSteps = 7
	cfg.Logging.File = "uigen.log"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
