package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configFileName = "config.yaml"
	envFileName    = ".env"
	envPrefix      = "CXZ"
)

type Config struct {
	ConfigDir string `mapstructure:"-" yaml:"config_dir"`
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`
	Database  string `mapstructure:"database" yaml:"database"`
	Editor    string `mapstructure:"editor" yaml:"editor"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfigDir is ~/.config/clockz.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".config", "clockz")
}

func DefaultConfig(configDir string) *Config {
	return &Config{
		ConfigDir: configDir,
		DataDir:   filepath.Join(configDir, "data"),
		Database:  filepath.Join(configDir, "database.db"),
		Editor:    defaultEditor,
		LogLevel:  "warn",
	}
}

// ConfigPath returns the config file inside configDir.
func ConfigPath(configDir string) string {
	return filepath.Join(configDir, configFileName)
}

// LoadConfig merges, lowest first: defaults, <configDir>/config.yaml, and
// CXZ_* environment variables. A <configDir>/.env file is loaded into the
// environment beforehand without overriding variables already set.
func LoadConfig(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	defaults := DefaultConfig(configDir)

	if err := godotenv.Load(filepath.Join(configDir, envFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFileName, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("database", defaults.Database)
	v.SetDefault("editor", defaults.Editor)
	v.SetDefault("log_level", defaults.LogLevel)

	path := ConfigPath(configDir)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ConfigDir = configDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Database == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if c.DataDir == "" {
		problems = append(problems, "data directory cannot be empty")
	}
	if strings.TrimSpace(c.Editor) == "" {
		problems = append(problems, "editor cannot be empty")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// EnsureDirs creates the config and data directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.ConfigDir, c.DataDir, filepath.Dir(c.Database)} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
