package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all launcher configuration resolved from the environment
type Config struct {
	// Runtime
	Env      string // "development" or "production"
	LogLevel string // empty means unset (info, unless the defaults file says otherwise)

	// External tool binary override (CLAUDE_EXEC_BIN); empty means unset
	ClaudeBin string

	// ThirdPartyModel is true when ANTHROPIC_BASE_URL or ANTHROPIC_API_KEY
	// is present. Such endpoints do their own model routing, so --model
	// must not be forced onto the tool.
	ThirdPartyModel bool
}

var (
	cfg  *Config
	once sync.Once
)

// Get returns the global configuration (singleton)
func Get() *Config {
	once.Do(func() {
		cfg = load()
	})
	return cfg
}

// load reads configuration from environment variables
func load() *Config {
	return &Config{
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", ""),
		ClaudeBin: getEnv("CLAUDE_EXEC_BIN", ""),
		ThirdPartyModel: os.Getenv("ANTHROPIC_BASE_URL") != "" ||
			os.Getenv("ANTHROPIC_API_KEY") != "",
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// Defaults holds fallback flag values read from the optional defaults file.
// Explicit flags always win over these.
type Defaults struct {
	Model           string `yaml:"model"`
	PermissionMode  string `yaml:"permission_mode"`
	AllowedTools    string `yaml:"allowed_tools"`
	DisallowedTools string `yaml:"disallowed_tools"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	ClaudeBin       string `yaml:"claude_bin"`
	LogLevel        string `yaml:"log_level"`
}

// LoadDefaults reads the YAML defaults file from the path in CLAUDE_EXEC_CONFIG
// or, when unset, from the user config directory. The variable is consulted
// when a command runs, not at process start. A missing file yields zero
// defaults; an unreadable or unparsable file is an error.
func LoadDefaults() (Defaults, error) {
	path := os.Getenv("CLAUDE_EXEC_CONFIG")
	if path == "" {
		confDir, err := os.UserConfigDir()
		if err != nil {
			return Defaults{}, nil
		}
		path = filepath.Join(confDir, "claude-exec", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults{}, nil
	}
	if err != nil {
		return Defaults{}, fmt.Errorf("failed to read defaults file %s: %w", path, err)
	}

	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("failed to parse defaults file %s: %w", path, err)
	}
	return d, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
