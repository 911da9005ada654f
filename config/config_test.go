package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	confDir := filepath.Join(dir, ".scrumhand")
	require.NoError(t, os.MkdirAll(confDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "config.yaml"), []byte(content), 0o644))
}

func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(project)

	// Keep ambient credentials out of the test.
	for _, key := range []string{
		"JIRA_URL", "JIRA_EMAIL", "JIRA_API_TOKEN",
		"AZURE_DEVOPS_ORG_URL", "AZURE_DEVOPS_PAT",
		"REDIS_ADDR", "SCRUMHAND_ENCRYPTION_KEY",
	} {
		t.Setenv(key, "")
	}
	return home, project
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 10, cfg.StepBudget)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.False(t, cfg.HasJira())
	assert.False(t, cfg.HasAzureDevOps())
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	home, project := isolate(t)

	writeConfig(t, home, "provider: anthropic\nmodel: claude-sonnet-4-20250514\nstep_budget: 6\n")
	writeConfig(t, project, "model: claude-opus-4-20250514\n")

	cfg, err := Load()
	require.NoError(t, err)

	// Project file wins for model, user file still supplies the rest.
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-opus-4-20250514", cfg.Model)
	assert.Equal(t, 6, cfg.StepBudget)
}

func TestLoad_EnvFallbackForCredentials(t *testing.T) {
	isolate(t)

	t.Setenv("JIRA_URL", "https://example.atlassian.net")
	t.Setenv("JIRA_EMAIL", "bot@example.com")
	t.Setenv("JIRA_API_TOKEN", "env-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.HasJira())
	assert.Equal(t, "env-token", cfg.Jira.APIToken)
}

func TestLoad_FileWinsOverEnv(t *testing.T) {
	_, project := isolate(t)

	writeConfig(t, project, "jira:\n  url: https://example.atlassian.net\n  email: bot@example.com\n  api_token: file-token\n")
	t.Setenv("JIRA_API_TOKEN", "env-token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Jira.APIToken)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, project := isolate(t)
	writeConfig(t, project, "provider: [unclosed\n")

	_, err := Load()
	assert.Error(t, err)
}
