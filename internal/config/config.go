// Package config reads compta.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file created by "compta init".
const FileName = "compta.yaml"

// Environment variables overriding the file.
const (
	EnvDBPath   = "COMPTA_DB_PATH"
	EnvCurrency = "COMPTA_CURRENCY"
	EnvLogLevel = "COMPTA_LOG_LEVEL"
	EnvChartID  = "COMPTA_CHART_ID"
)

var envKeys = []string{EnvDBPath, EnvCurrency, EnvLogLevel, EnvChartID}

// Config represents the top-level compta.yaml configuration.
type Config struct {
	Organization OrganizationConfig `yaml:"organization"`
	Database     DatabaseConfig     `yaml:"database"`
	Book         BookConfig         `yaml:"book"`
	Log          LogConfig          `yaml:"log"`
}

// OrganizationConfig identifies the organization keeping the books.
type OrganizationConfig struct {
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"` // relative paths resolve against the config file's directory
}

// BookConfig selects the chart of accounts and the display currency.
type BookConfig struct {
	ChartID  int64  `yaml:"chart_id"`
	Currency string `yaml:"currency"`
}

// LogConfig controls the default log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a compta.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default(name, country string) *Config {
	return &Config{
		Organization: OrganizationConfig{
			Name:    name,
			Country: country,
		},
		Database: DatabaseConfig{
			Path: "compta.db",
		},
		Book: BookConfig{
			ChartID:  1,
			Currency: "EUR",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Resolve loads the file at path, then applies overrides from envFile and the
// process environment, which wins. A missing envFile is ignored.
func Resolve(path, envFile string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	env, err := Environment(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment returns the override variables found in envFile and the process
// environment.
func Environment(envFile string) (map[string]string, error) {
	env := make(map[string]string)
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
		for _, k := range envKeys {
			if v, ok := vars[k]; ok {
				env[k] = v
			}
		}
	}
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env, nil
}

// Apply overrides fields from env. Empty values are ignored.
func (c *Config) Apply(env map[string]string) error {
	if v := env[EnvDBPath]; v != "" {
		c.Database.Path = v
	}
	if v := env[EnvCurrency]; v != "" {
		c.Book.Currency = strings.ToUpper(v)
	}
	if v := env[EnvLogLevel]; v != "" {
		c.Log.Level = v
	}
	if v := env[EnvChartID]; v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", EnvChartID, v)
		}
		c.Book.ChartID = id
	}
	return nil
}

// Validate checks the fields needed to open a book.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.Path == "" {
		missing = append(missing, "database.path")
	}
	if c.Book.ChartID <= 0 {
		missing = append(missing, "book.chart_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Book.Currency != "" && money.GetCurrency(c.Book.Currency) == nil {
		return fmt.Errorf("unknown currency %q", c.Book.Currency)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level; empty means info.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}

// DatabasePath returns the database file path, relative paths being taken
// from the directory of the config file at configPath.
func (c *Config) DatabasePath(configPath string) string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(filepath.Dir(configPath), c.Database.Path)
}
