package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/odvcencio/furry-store/crosstab"
	"github.com/odvcencio/furry-store/storage"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, storage.DriverMemory, cfg.Storage.Local.Driver)
	assert.Equal(t, storage.DriverMemory, cfg.Storage.Session.Driver)
	assert.Equal(t, crosstab.DriverNone, cfg.CrossTab.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "furry-store.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
storage:
  local:
    driver: file
    dir: `+dir+`
crosstab:
  driver: watch
log:
  level: debug
  format: console
`), 0o600))
	t.Setenv("FURRYSTORE_METRICS_ADDR", ":9200")

	cfg, err := Load(New(), file)
	require.NoError(t, err)
	assert.Equal(t, storage.DriverFile, cfg.Storage.Local.Driver)
	assert.Equal(t, dir, cfg.Storage.Local.Dir)
	assert.Equal(t, crosstab.DriverWatch, cfg.CrossTab.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9200", cfg.Metrics.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Config{
		Storage: StorageConfig{
			Local:   storage.Config{Driver: storage.DriverFile},
			Session: storage.Config{Driver: "tape"},
		},
		CrossTab: crosstab.Config{Driver: crosstab.DriverWatch},
		Log:      LogConfig{Level: "loud", Format: "xml"},
		Timeout:  -time.Second,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)
	assert.ErrorIs(t, err, storage.ErrUnknownDriver)
}

func TestValidate_RemoteDriversNeedURL(t *testing.T) {
	cfg := Config{
		Storage:  StorageConfig{Local: storage.Config{Driver: storage.DriverSQLite}},
		CrossTab: crosstab.Config{Driver: crosstab.DriverNATS},
		Log:      LogConfig{Level: "info"},
	}
	assert.Len(t, multierr.Errors(cfg.Validate()), 2)

	cfg.Storage.Local.URL = "file::memory:"
	cfg.CrossTab.URL = "nats://127.0.0.1:4222"
	assert.NoError(t, cfg.Validate())
}
