package config

import (
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces all environment variables, e.g. TABKIT_LOGGING_LEVEL.
const envPrefix = "TABKIT"

// configFileEnv names an explicit config file, overriding the probe list.
const configFileEnv = "TABKIT_CONFIG"

// configFileCandidates lists the config file locations probed in order.
var configFileCandidates = []string{
	"tabkit.yaml",
	filepath.Join("config", "tabkit.yaml"),
}

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"required,oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"required,oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"required,oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	ArchiveDir string `yaml:"archive_dir" envconfig:"ARCHIVE_DIR" validate:"required"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: filepath.Join("logs", "tabkit.log"),
		},
		Paths: PathsConfig{
			DataDir:    "data",
			LogsDir:    "logs",
			ArchiveDir: "archive",
		},
	}
}

// Load builds the configuration from environment variables, an optional
// config file and the built-in defaults, in that order of precedence.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path, ok := findConfigFile(); ok {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		if err := mergo.Merge(&cfg, *fileCfg); err != nil {
			return nil, fmt.Errorf("failed to merge file config: %w", err)
		}
	}

	if err := mergo.Merge(&cfg, *Default()); err != nil {
		return nil, fmt.Errorf("failed to merge default config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// findConfigFile returns the config file to use, if any. An explicit path in
// TABKIT_CONFIG wins over the probe list.
func findConfigFile() (string, bool) {
	if path := os.Getenv(configFileEnv); path != "" {
		return path, true
	}
	for _, candidate := range configFileCandidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var structValidator = validator.New()

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// EnsureDirectories creates the configured directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogsDir, c.Paths.ArchiveDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetDataPath returns name resolved inside the data directory.
func (c *Config) GetDataPath(name string) string {
	return filepath.Join(c.Paths.DataDir, name)
}

// GetLogPath returns name resolved inside the logs directory.
func (c *Config) GetLogPath(name string) string {
	return filepath.Join(c.Paths.LogsDir, name)
}

// GetArchivePath returns name resolved inside the archive directory.
func (c *Config) GetArchivePath(name string) string {
	return filepath.Join(c.Paths.ArchiveDir, name)
}
