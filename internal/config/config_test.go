package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8736", cfg.Server.Addr)
	assert.Equal(t, "sim", cfg.Terminal.Backend)
	assert.Equal(t, 200, cfg.Trading.BatchLimit)
	assert.Equal(t, 2, cfg.Session.RetryCount)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 0.0.0.0:9000
  api_key: secret
  rate_limit: 5
terminal:
  backend: sim
  login: 123456
trading:
  batch_limit: 50
export:
  database: /tmp/archive.duckdb
  jobs:
    - kind: rates
      symbol: EURUSD
      timeframe: M1
      table: rates_eurusd_m1
      lookback_minutes: 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, int64(123456), cfg.Terminal.Login)
	assert.Equal(t, 50, cfg.Trading.BatchLimit)
	require.Len(t, cfg.Export.Jobs, 1)
	assert.Equal(t, "rates", cfg.Export.Jobs[0].Kind)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
terminal:
  backend: live
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestLoadRejectsOversizedBatchLimit(t *testing.T) {
	path := writeConfig(t, `
trading:
  batch_limit: 100000
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MT5_BRIDGE_API_KEY", "from-env")
	t.Setenv("MT5_BRIDGE_LOGIN", "777001")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.APIKey)
	assert.Equal(t, int64(777001), cfg.Terminal.Login)
}

func TestLoadRejectsBadJob(t *testing.T) {
	path := writeConfig(t, `
export:
  jobs:
    - kind: candles
      table: t
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
