// Package config provides CLI configuration management for the meetborg command-line tool.
// It supports loading configuration from YAML files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultAPIBaseURL        = "http://localhost:8000/api/v1"
	DefaultTimeout           = 30 * time.Second
	DefaultOutputFormat      = OutputFormatText
	DefaultConfigDir         = ".meetborg"
	DefaultConfigFile        = "config.yaml"
	DefaultDetectQuietPeriod = 500 * time.Millisecond
)

// CLIConfig holds the CLI configuration settings.
type CLIConfig struct {
	// APIBaseURL is the base URL of the meetborg backend API,
	// including the version prefix (e.g. "https://meetborg.example.com/api/v1").
	APIBaseURL string `yaml:"api_base_url"`

	// Timeout is the default timeout for API requests.
	Timeout time.Duration `yaml:"timeout"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// DetectQuietPeriod is the debounce interval for platform detection:
	// a classification call fires only after this much time passes with no
	// further URL input changes.
	DetectQuietPeriod time.Duration `yaml:"detect_quiet_period"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a CLIConfig with default values.
func DefaultConfig() *CLIConfig {
	return &CLIConfig{
		APIBaseURL:        DefaultAPIBaseURL,
		Timeout:           DefaultTimeout,
		OutputFormat:      DefaultOutputFormat,
		DetectQuietPeriod: DefaultDetectQuietPeriod,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $MEETBORG_CONFIG_DIR if set, otherwise ~/.meetborg
func ConfigDir() (string, error) {
	if dir := os.Getenv("MEETBORG_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.meetborg/config.yaml or $MEETBORG_CONFIG_DIR/config.yaml)
// 3. Environment variables (MEETBORG_API_BASE_URL, MEETBORG_TIMEOUT, MEETBORG_OUTPUT_FORMAT, ...)
func LoadConfig() (*CLIConfig, error) {
	cfg := DefaultConfig()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *CLIConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// We need a temp struct for unmarshaling durations as strings.
	type configFile struct {
		APIBaseURL        string       `yaml:"api_base_url"`
		Timeout           string       `yaml:"timeout"`
		OutputFormat      OutputFormat `yaml:"output_format"`
		DetectQuietPeriod string       `yaml:"detect_quiet_period"`
		Debug             bool         `yaml:"debug"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.APIBaseURL != "" {
		cfg.APIBaseURL = fileCfg.APIBaseURL
	}
	if fileCfg.Timeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if fileCfg.OutputFormat != "" {
		cfg.OutputFormat = fileCfg.OutputFormat
	}
	if fileCfg.DetectQuietPeriod != "" {
		quiet, err := time.ParseDuration(fileCfg.DetectQuietPeriod)
		if err != nil {
			return fmt.Errorf("parsing detect_quiet_period: %w", err)
		}
		cfg.DetectQuietPeriod = quiet
	}
	cfg.Debug = fileCfg.Debug

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *CLIConfig) {
	if v := os.Getenv("MEETBORG_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}

	if v := os.Getenv("MEETBORG_TIMEOUT"); v != "" {
		if timeout, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = timeout
		}
	}

	if v := os.Getenv("MEETBORG_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("MEETBORG_DETECT_QUIET_PERIOD"); v != "" {
		if quiet, err := time.ParseDuration(v); err == nil {
			cfg.DetectQuietPeriod = quiet
		}
	}

	if v := os.Getenv("MEETBORG_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
}

// Validate checks that the configuration is valid.
func (c *CLIConfig) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_base_url must be an absolute URL: %q", c.APIBaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.DetectQuietPeriod <= 0 {
		return fmt.Errorf("detect_quiet_period must be positive")
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *CLIConfig) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)

	// Convert to YAML-friendly format with durations as strings.
	type configFile struct {
		APIBaseURL        string       `yaml:"api_base_url"`
		Timeout           string       `yaml:"timeout"`
		OutputFormat      OutputFormat `yaml:"output_format"`
		DetectQuietPeriod string       `yaml:"detect_quiet_period"`
		Debug             bool         `yaml:"debug,omitempty"`
	}

	fileCfg := configFile{
		APIBaseURL:        cfg.APIBaseURL,
		Timeout:           cfg.Timeout.String(),
		OutputFormat:      cfg.OutputFormat,
		DetectQuietPeriod: cfg.DetectQuietPeriod.String(),
		Debug:             cfg.Debug,
	}

	data, err := yaml.Marshal(&fileCfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
