package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 7, cfg.Tier.WindowDays)
	assert.Equal(t, 50, cfg.Tier.MinClicks)
	assert.Equal(t, 0.25, cfg.Tier.MinApprovalRate)
	assert.Equal(t, 1.2, cfg.Tier.PromotionEPCMultiplier)
	assert.Equal(t, 3, cfg.Tier.MaxTierAIssuers)
	assert.Equal(t, 3, cfg.PageHealth.WindowDays)
	assert.Equal(t, 0.30, cfg.PageHealth.EPCDropThreshold)
	assert.Equal(t, 3, cfg.PageHealth.RecoveryWindowDays)
	assert.Equal(t, 500, cfg.Rollout.HardCap)
	assert.Equal(t, 0.10, cfg.ABTest.BThreshold)
	assert.Equal(t, 0.85, cfg.Content.SimilarityThreshold)
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  environment: production
tier:
  window_days: 14
  max_tier_a_issuers: 2
rollout:
  kill_switch: true
  staged_limit: 50
  hard_cap: 100
  promoted:
    comparison:
      - visa-platinum-vs-gold
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, 14, cfg.Tier.WindowDays)
	assert.Equal(t, 2, cfg.Tier.MaxTierAIssuers)
	assert.True(t, cfg.Rollout.KillSwitch)
	assert.Equal(t, 50, cfg.Rollout.StagedLimit)
	assert.Equal(t, []string{"visa-platinum-vs-gold"}, cfg.Rollout.Promoted["comparison"])
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	t.Setenv("DATABASE_URL", "postgres://app:pw@db:5432/cardrank")
	t.Setenv("CRON_SECRET", "s3cret")
	t.Setenv("ROLLOUT_KILL_SWITCH", "true")
	t.Setenv("ROLLOUT_STAGED_LIMIT", "25")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:pw@db:5432/cardrank", cfg.Database.URL)
	assert.Equal(t, "s3cret", cfg.Cron.Secret)
	assert.True(t, cfg.Rollout.KillSwitch)
	assert.Equal(t, 25, cfg.Rollout.StagedLimit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
