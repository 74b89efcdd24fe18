package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "scheduled", cfg.Ranking.RefreshMode)
	assert.Equal(t, 100, cfg.Ranking.ListLimit)
	assert.Equal(t, 5, cfg.Ranking.Weights["like_received"])
	assert.Equal(t, 50, cfg.Guest.MaxItems)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9000"
ranking:
  refresh_mode: eager
  weights:
    approved_post: 10
    like_received: 2
    invalid_feedback: -5
database:
  name: pikmin_test
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DEEPL_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "eager", cfg.Ranking.RefreshMode)
	assert.Equal(t, 2, cfg.Ranking.Weights["like_received"])
	assert.Equal(t, -5, cfg.Ranking.Weights["invalid_feedback"])
	assert.Equal(t, "pikmin_test", cfg.Database.Name)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.DeepL.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := Default()
	cfg.Ranking.RefreshMode = "sometimes"
	require.Error(t, cfg.Validate())
}

func TestDurationsFallback(t *testing.T) {
	cfg := Default()
	cfg.Ranking.RefreshInterval = "nope"
	cfg.Geo.RefineDelay = "bad"
	cfg.Server.ShutdownGrace = ""

	assert.Equal(t, time.Minute, cfg.Ranking.ParseRefreshInterval())
	assert.Equal(t, 2*time.Second, cfg.Geo.ParseRefineDelay())
	assert.Equal(t, 10*time.Second, cfg.Server.ParseShutdownGrace())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", Name: "n"}
	assert.Equal(t, "postgres://u:p@h:5432/n", d.DSN())

	d.SSLMode = "disable"
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", d.DSN())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	r := RankingConfig{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, r.Location())
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7,")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.7"}, cfg.Server.TrustedProxies)

	cfg.Server.TrustedProxies = []string{"load-balancer"}
	assert.ErrorContains(t, cfg.Validate(), "trusted_proxies")
}
