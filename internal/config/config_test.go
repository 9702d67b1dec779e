package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("TRELLO_PAGE_SIZE", "")
	t.Setenv("GITHUB_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 1000, cfg.Importer.Vendor("trello").PageSize)
	assert.Equal(t, "https://api.github.com", cfg.Importer.Vendor("github").BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Importer.HTTPTimeout())
}

func TestLoadVendorOverrides(t *testing.T) {
	t.Setenv("JIRA_BASE_URL", "https://jira.example.com")
	t.Setenv("JIRA_TOKEN", "secret")
	t.Setenv("JIRA_PAGE_SIZE", "50")
	t.Setenv("IMPORT_HTTP_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	jira := cfg.Importer.Vendor("jira")
	assert.Equal(t, "https://jira.example.com", jira.BaseURL)
	assert.Equal(t, "secret", jira.Token)
	assert.Equal(t, 50, jira.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Importer.HTTPTimeout())
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.Error(t, err)
}
