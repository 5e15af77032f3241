package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, StoreBackendFile, cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Store.MaxRetries)
	assert.False(t, cfg.Store.UsesPostgres())
	assert.Equal(t, 30*time.Minute, cfg.Planner.ProposalTTL)
	assert.Equal(t, time.UTC, cfg.Planner.Location())
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Redis ")
	t.Setenv("PREFERENCES_IN_DB", "true")
	t.Setenv("PLANNER_TIMEZONE", "America/New_York")
	t.Setenv("PLANNER_PROPOSAL_TTL", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
	assert.True(t, cfg.Store.UsesPostgres())
	assert.Equal(t, "America/New_York", cfg.Planner.Location().String())
	assert.Equal(t, 30*time.Minute, cfg.Planner.ProposalTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestPlannerLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, PlannerConfig{Timezone: "Mars/Olympus"}.Location())
	assert.Equal(t, time.UTC, PlannerConfig{}.Location())
}
