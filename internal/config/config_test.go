package config

import (
	"testing"
	"time"

	"leadboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "DATA_FILE", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH", "SESSION_TTL", "TOP_GROUPS", "CORS_ORIGINS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "data/base_leads.xlsx", cfg.Data.File)
	assert.Equal(t, "admin2026", cfg.Admin.Password)
	assert.Equal(t, 8*time.Hour, cfg.Admin.SessionTTL)
	assert.Equal(t, 10, cfg.Dashboard.TopGroups)
	assert.Equal(t, 8, cfg.Dashboard.TopStatuses)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_FILE", "/tmp/leads.xlsx")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("TOP_GROUPS", "5")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/tmp/leads.xlsx", cfg.Data.File)
	assert.Equal(t, 30*time.Minute, cfg.Admin.SessionTTL)
	assert.Equal(t, 5, cfg.Dashboard.TopGroups)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("TOP_GROUPS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.NotEmpty(t, errors.GetDetails(err))
}
