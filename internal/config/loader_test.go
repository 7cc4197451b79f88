package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relations-dil/go-relations-sqlite/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultModels, cfg.Models)
	assert.Equal(t, config.DefaultSourceName, cfg.Source.Name)
	assert.Equal(t, config.DefaultSourceDatabase, cfg.Source.Database)
	assert.Equal(t, config.DefaultStmtCapacity, cfg.Source.StmtCapacity)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.False(t, cfg.Logging.JSON)
	assert.Empty(t, cfg.Telemetry.Endpoint)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `models: crm.yaml
source:
  name: crm
  database: crm.db
  stmt_capacity: 64
logging:
  level: debug
  json: true
telemetry:
  endpoint: localhost:4317
  insecure: true
  sample_ratio: 0.5
  environment: dev
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "crm.yaml", cfg.Models)
	assert.Equal(t, "crm", cfg.Source.Name)
	assert.Equal(t, "crm.db", cfg.Source.Database)
	assert.Equal(t, 64, cfg.Source.StmtCapacity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.InEpsilon(t, 0.5, cfg.Telemetry.SampleRatio, 1e-9)
	assert.Equal(t, "dev", cfg.Telemetry.Environment)
}

func TestLoadMissingExplicit(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "read config")
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "logging:\n  level: loud\n")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RELATIONS_SOURCE_NAME", "env-source")
	t.Setenv("RELATIONS_LOGGING_LEVEL", "warn")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-source", cfg.Source.Name)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() config.Config {
		return config.Config{
			Source:  config.SourceConfig{Name: "main"},
			Logging: config.LoggingConfig{Level: "info"},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Source.Name = ""
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidSourceName)

	cfg = valid()
	cfg.Source.StmtCapacity = -1
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidStmtCapacity)

	cfg = valid()
	cfg.Logging.Level = "loud"
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidLogLevel)

	cfg = valid()
	cfg.Telemetry.SampleRatio = 1.5
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidSampleRatio)
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()

	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	for name, want := range levels {
		logging := config.LoggingConfig{Level: name}
		assert.Equal(t, want, logging.SlogLevel())
	}
}
