// Package config loads the scrumhand configuration from YAML files with
// environment-variable fallback for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// JiraConfig holds the JIRA Cloud connection settings.
type JiraConfig struct {
	URL      string `yaml:"url"`
	Email    string `yaml:"email"`
	APIToken string `yaml:"api_token"`
}

// AzureDevOpsConfig holds the Azure DevOps connection settings.
type AzureDevOpsConfig struct {
	OrgURL string `yaml:"org_url"`
	PAT    string `yaml:"pat"`
}

// RedisConfig holds the Redis store settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Config is the full scrumhand configuration.
type Config struct {
	// Provider selects the LLM backend: "anthropic" or "openai".
	Provider string `yaml:"provider"`
	// Model is the model identifier passed to the provider.
	Model string `yaml:"model"`
	// GuardModel is the model used for safety classification. Defaults to
	// Model when empty.
	GuardModel string `yaml:"guard_model"`

	// StepBudget is the tool-round budget granted to new sessions.
	StepBudget int `yaml:"step_budget"`

	// Store selects the session backend: "memory", "redis" or "file".
	Store string `yaml:"store"`
	// FileDir is the session directory for the file store.
	FileDir string      `yaml:"file_dir"`
	Redis   RedisConfig `yaml:"redis"`

	// EncryptionKey enables at-rest transcript encryption when set. It must
	// be 32 bytes. FallbackKeys allows decrypting under rotated-out keys.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`

	// Host and Port configure the HTTP listener.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	Jira        JiraConfig        `yaml:"jira"`
	AzureDevOps AzureDevOpsConfig `yaml:"azure_devops"`
}

// Load reads configuration from ~/.scrumhand/config.yaml and then
// ./.scrumhand/config.yaml, with the project file taking precedence, and
// finally fills credentials from the environment where the files left
// them empty.
func Load() (*Config, error) {
	cfg := &Config{
		Provider:   "openai",
		Model:      "gpt-4o-mini",
		StepBudget: 10,
		Store:      "memory",
		Host:       "0.0.0.0",
		Port:       8080,
	}

	// Load user-level config first
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".scrumhand", "config.yaml")
		if _, err := os.Stat(userPath); err == nil {
			if err := loadFromFile(userPath, cfg); err != nil {
				return nil, fmt.Errorf("error loading user config: %w", err)
			}
		}
	}

	// Load project-level config, overriding user-level
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not get working directory: %w", err)
	}
	projectPath := filepath.Join(wd, ".scrumhand", "config.yaml")
	if _, err := os.Stat(projectPath); err == nil {
		if err := loadFromFile(projectPath, cfg); err != nil {
			return nil, fmt.Errorf("error loading project config: %w", err)
		}
	}

	cfg.fillFromEnv()
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal overwrites fields present in the YAML, which gives a simple
	// merge where project-level config replaces user-level.
	return yaml.Unmarshal(data, cfg)
}

// fillFromEnv backfills credentials and connection settings from the
// environment. File values win over environment values.
func (c *Config) fillFromEnv() {
	setIfEmpty(&c.Jira.URL, "JIRA_URL")
	setIfEmpty(&c.Jira.Email, "JIRA_EMAIL")
	setIfEmpty(&c.Jira.APIToken, "JIRA_API_TOKEN")
	setIfEmpty(&c.AzureDevOps.OrgURL, "AZURE_DEVOPS_ORG_URL")
	setIfEmpty(&c.AzureDevOps.PAT, "AZURE_DEVOPS_PAT")
	setIfEmpty(&c.Redis.Addr, "REDIS_ADDR")
	setIfEmpty(&c.EncryptionKey, "SCRUMHAND_ENCRYPTION_KEY")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst == "" {
		*dst = os.Getenv(envKey)
	}
}

// HasJira reports whether the JIRA toolset can be configured.
func (c *Config) HasJira() bool {
	return c.Jira.URL != "" && c.Jira.Email != "" && c.Jira.APIToken != ""
}

// HasAzureDevOps reports whether the Azure DevOps toolset can be
// configured.
func (c *Config) HasAzureDevOps() bool {
	return c.AzureDevOps.OrgURL != "" && c.AzureDevOps.PAT != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
