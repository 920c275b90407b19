// Package config provides configuration management for the scm-folders service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr       = ":8080"
	DefaultLogLevel         = "info"
	DefaultRateLimitMaxWait = 2 * time.Minute
)

// Config holds the configuration of the service
type Config struct {
	GitHubToken      string
	GitHubAPIURL     string // Empty for github.com, otherwise the API root of a GitHub Enterprise server
	ListenAddr       string
	LogLevel         string
	LogConsole       bool
	TelemetryEnabled bool
	OTLPEndpoint     string
	OTLPInsecure     bool // Export spans over plain HTTP
	ProtectedPaths   []string
	ProtectBranches  bool          // Refuse folder edits on protected branches
	RateLimitMaxWait time.Duration // Longest time a request waits for a rate limit to reset before giving up
}

// Override uses pointer fields to distinguish between unset and zero values when loading a partial configuration
// file. See [Config] for field descriptions
type Override struct {
	GitHubAPIURL     *string        `yaml:"github_api_url,omitempty" json:"github_api_url,omitempty"`
	ListenAddr       *string        `yaml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
	LogLevel         *string        `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	LogConsole       *bool          `yaml:"log_console,omitempty" json:"log_console,omitempty"`
	TelemetryEnabled *bool          `yaml:"telemetry_enabled,omitempty" json:"telemetry_enabled,omitempty"`
	OTLPEndpoint     *string        `yaml:"otlp_endpoint,omitempty" json:"otlp_endpoint,omitempty"`
	OTLPInsecure     *bool          `yaml:"otlp_insecure,omitempty" json:"otlp_insecure,omitempty"`
	ProtectedPaths   []string       `yaml:"protected_paths,omitempty" json:"protected_paths,omitempty"`
	ProtectBranches  *bool          `yaml:"protect_branches,omitempty" json:"protect_branches,omitempty"`
	RateLimitMaxWait *time.Duration `yaml:"rate_limit_max_wait,omitempty" json:"rate_limit_max_wait,omitempty"`
}

// Default returns a Config with all default values
func Default() Config {
	return Config{
		ListenAddr:       DefaultListenAddr,
		LogLevel:         DefaultLogLevel,
		RateLimitMaxWait: DefaultRateLimitMaxWait,
	}
}

// Merge applies non-nil values from override onto the config
func (c *Config) Merge(override *Override) {
	if override.GitHubAPIURL != nil {
		c.GitHubAPIURL = *override.GitHubAPIURL
	}
	if override.ListenAddr != nil {
		c.ListenAddr = *override.ListenAddr
	}
	if override.LogLevel != nil {
		c.LogLevel = *override.LogLevel
	}
	if override.LogConsole != nil {
		c.LogConsole = *override.LogConsole
	}
	if override.TelemetryEnabled != nil {
		c.TelemetryEnabled = *override.TelemetryEnabled
	}
	if override.OTLPEndpoint != nil {
		c.OTLPEndpoint = *override.OTLPEndpoint
	}
	if override.OTLPInsecure != nil {
		c.OTLPInsecure = *override.OTLPInsecure
	}
	if override.ProtectedPaths != nil {
		c.ProtectedPaths = override.ProtectedPaths
	}
	if override.ProtectBranches != nil {
		c.ProtectBranches = *override.ProtectBranches
	}
	if override.RateLimitMaxWait != nil {
		c.RateLimitMaxWait = *override.RateLimitMaxWait
	}
}

// LoadOverrideFile reads configuration overrides from a YAML or JSON file without merging them
func LoadOverrideFile(path string) (*Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var override Override
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}
	return &override, nil
}

// Load builds the configuration from defaults, the optional config file at path and finally environment variables
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		override, err := LoadOverrideFile(path)
		if err != nil {
			return Config{}, err
		}
		config.Merge(override)
	}

	if err := config.applyEnv(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("GITHUB_TOKEN"); ok {
		c.GitHubToken = v
	}
	if v, ok := os.LookupEnv("GITHUB_API_URL"); ok {
		c.GitHubAPIURL = v
	}
	if v, ok := os.LookupEnv("LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("OTLP_ENDPOINT"); ok {
		c.OTLPEndpoint = v
	}
	if v, ok := os.LookupEnv("PROTECTED_PATHS"); ok {
		c.ProtectedPaths = splitList(v)
	}

	for name, target := range map[string]*bool{
		"LOG_CONSOLE":       &c.LogConsole,
		"TELEMETRY_ENABLED": &c.TelemetryEnabled,
		"OTLP_INSECURE":     &c.OTLPInsecure,
		"PROTECT_BRANCHES":  &c.ProtectBranches,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid value for environment variable %s: %w", name, err)
		}
		*target = b
	}

	if v, ok := os.LookupEnv("RATE_LIMIT_MAX_WAIT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid value for environment variable RATE_LIMIT_MAX_WAIT: %w", err)
		}
		c.RateLimitMaxWait = d
	}
	return nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if the required configuration is present
func (c Config) Validate() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("missing required environment variable: GITHUB_TOKEN")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.RateLimitMaxWait < 0 {
		return fmt.Errorf("rate limit max wait must not be negative")
	}
	return nil
}
