package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFromDir(t)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "elopay_gateway", cfg.Database.DBName)
	assert.Equal(t, 8*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "50000.00", cfg.Alerts.LargePayinThreshold)
	assert.Equal(t, "elopay-gateway", cfg.JWT.Issuer)
	assert.Equal(t, "info", cfg.Log.Level)
}

func loadFromDir(t *testing.T) (*Config, error) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return Load("")
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
gateway:
  base_url: https://upstream.example.com
  merchant_id: M100
  api_key: master-api-key
  payout_key: master-payout-key
  callback_base_url: https://pay.example.com/
  timeout: 5s
alerts:
  large_payout_threshold: "10000.00"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://upstream.example.com", cfg.Gateway.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "10000.00", cfg.Alerts.LargePayoutThreshold)
	// Untouched keys keep defaults.
	assert.Equal(t, "50000.00", cfg.Alerts.LargePayinThreshold)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("EPG_DATABASE_HOST", "db.internal")
	t.Setenv("EPG_GATEWAY_API_KEY", "env-master-key")

	cfg, err := loadFromDir(t)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "env-master-key", cfg.Gateway.APIKey)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "elopay", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/elopay?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "localhost", Port: 6379}
	assert.Equal(t, "localhost:6379", r.Addr())
}

func TestGatewayConfig_CallbackURLs(t *testing.T) {
	g := GatewayConfig{CallbackBaseURL: "https://pay.example.com/"}
	assert.Equal(t, "https://pay.example.com/api/v1/callback/payin", g.PayinCallbackURL())
	assert.Equal(t, "https://pay.example.com/api/v1/callback/payout", g.PayoutCallbackURL())
}
