package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Generation  GenerationConfig  `yaml:"generation"`
	PromptBuild PromptBuildConfig `yaml:"prompt_build"`
	Web         WebConfig         `yaml:"web,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// GenerationConfig selects and configures the text-generation service.
type GenerationConfig struct {
	Provider string `yaml:"provider"` // "gemini", "openai" or "anthropic"
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// Preamble is prepended to every serialized prompt.
	Preamble *string `yaml:"preamble,omitempty"`
}

// ResolveAPIKey returns the configured key, falling back to the provider's
// environment variables.
func (g GenerationConfig) ResolveAPIKey() string {
	if key := strings.TrimSpace(g.APIKey); key != "" {
		return key
	}
	var envs []string
	switch strings.ToLower(strings.TrimSpace(g.Provider)) {
	case "openai", "open-ai", "open_ai":
		envs = []string{"OPENAI_API_KEY"}
	case "anthropic", "claude":
		envs = []string{"ANTHROPIC_API_KEY"}
	default:
		envs = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	for _, name := range envs {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

type PromptBuildConfig struct {
	RootDir            string `yaml:"root_dir,omitempty"`
	RegistryFile       string `yaml:"registry_file,omitempty"`
	SQLitePath         string `yaml:"sqlite_path,omitempty"`
	AuditEnabled       bool   `yaml:"audit_enabled"`
	AuditDir           string `yaml:"audit_dir,omitempty"`
	AuditRetentionDays int    `yaml:"audit_retention_days,omitempty"`
	AuditFilePrefix    string `yaml:"audit_file_prefix,omitempty"`
	// AuditCleanupSchedule is a cron expression for retention cleanup in web mode.
	AuditCleanupSchedule string `yaml:"audit_cleanup_schedule,omitempty"`
}

type WebConfig struct {
	Port int `yaml:"port,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Generation: GenerationConfig{
			Provider: "gemini",
			Timeout:  60 * time.Second,
		},
		PromptBuild: PromptBuildConfig{
			RootDir:              ".",
			SQLitePath:           ".promptblocks.db",
			AuditEnabled:         false,
			AuditDir:             ".promptblocks/audit",
			AuditRetentionDays:   7,
			AuditFilePrefix:      "promptbuild",
			AuditCleanupSchedule: "@daily",
		},
		Web: WebConfig{
			Port: 18080,
		},
	}
}

func ConfigPath() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".promptblocks.yaml")
}

func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath reads the YAML file at path over the defaults.
// A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
