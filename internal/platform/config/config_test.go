package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "quotekeeper", cfg.App.Name)
	assert.Equal(t, "dev", cfg.App.Version)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Client.Retry.InitialInterval)
	assert.Equal(t, DefaultClientCircuitMaxFailures, cfg.Client.CircuitBreaker.MaxFailures)
	assert.False(t, cfg.Log.File.Enabled)
	assert.Equal(t, "./logs/quotekeeper.log", cfg.Log.File.Path)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "quotekeeper", cfg.Telemetry.ServiceName)

	require.NoError(t, cfg.Validate(), "defaults must be valid on their own")
}

func TestLoad_DomainDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, RemoteConfig{
		BaseURL:   "https://jsonplaceholder.typicode.com",
		Name:      "remote-quotes",
		FetchPath: "/posts",
		PostPath:  "/posts",
	}, cfg.Remote)
	assert.Equal(t, StorageConfig{Driver: "bolt", Path: "./data/quotes.db"}, cfg.Storage)
	assert.Equal(t, SyncConfig{
		Enabled:            true,
		Interval:           30 * time.Second,
		BatchSize:          DefaultSyncBatchSize,
		RunOnStart:         true,
		PublishConcurrency: DefaultSyncPublishConcurrency,
	}, cfg.Sync)
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "trace")
	t.Setenv("APP_TELEMETRY_ENABLED", "true")
	t.Setenv("APP_STORAGE_DRIVER", "sqlite")
	t.Setenv("APP_SYNC_BATCH_SIZE", "12")
	t.Setenv("APP_SYNC_RUN_ON_START", "false")
	t.Setenv("APP_REMOTE_BASE_URL", "http://localhost:3000")
	t.Setenv("APP_CLIENT_CIRCUIT_BREAKER_MAX_FAILURES", "9")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "trace", cfg.Log.Level)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 12, cfg.Sync.BatchSize)
	assert.False(t, cfg.Sync.RunOnStart)
	assert.Equal(t, "http://localhost:3000", cfg.Remote.BaseURL)
	assert.Equal(t, 9, cfg.Client.CircuitBreaker.MaxFailures)
}

func TestLoad_ProfileFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "base.yaml"), []byte(`
storage:
  driver: sqlite
  path: ./data/base.sqlite
sync:
  interval: 45s
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "test.yaml"), []byte(`
app:
  environment: test
sync:
  enabled: false
`), 0o600))

	t.Chdir(dir)
	t.Setenv("APP_STORAGE_PATH", "/tmp/env.sqlite")

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver, "base file overrides defaults")
	assert.Equal(t, 45*time.Second, cfg.Sync.Interval)
	assert.Equal(t, "test", cfg.App.Environment, "profile overrides base")
	assert.False(t, cfg.Sync.Enabled)
	assert.Equal(t, "/tmp/env.sqlite", cfg.Storage.Path, "env overrides files")
}

func TestLoad_NonExistentProfile(t *testing.T) {
	cfg, err := Load("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, "quotekeeper", cfg.App.Name)
}

func TestLoad_MalformedProfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "broken.yaml"), []byte("sync: [unclosed"), 0o600))

	t.Chdir(dir)

	_, err := Load("broken")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `loading profile config "broken"`)
}

func TestEnvKeyMapper(t *testing.T) {
	mapper := envKeyMapper([]string{"sync.batch_size", "log.file.max_size", "server.port"})

	tests := map[string]string{
		"APP_SYNC_BATCH_SIZE":    "sync.batch_size",
		"APP_LOG_FILE_MAX_SIZE":  "log.file.max_size",
		"APP_SERVER_PORT":        "server.port",
		"APP_SOMETHING_NEW_HERE": "something.new.here",
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, mapper(input))
		})
	}
}
