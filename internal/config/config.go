// Package config loads whm settings from config.toml, WHM_* environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/balkashynov/whm/internal/models"
)

// EnvPrefix prefixes every environment override, e.g. WHM_DATABASE_PATH
const EnvPrefix = "WHM"

// Config is the effective configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database" toml:"database"`
	Session  SessionConfig  `mapstructure:"session" toml:"session"`
	Timer    TimerConfig    `mapstructure:"timer" toml:"timer"`
	Export   ExportConfig   `mapstructure:"export" toml:"export"`
	Logging  LoggingConfig  `mapstructure:"logging" toml:"logging"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

type SessionConfig struct {
	DefaultGroup string `mapstructure:"default_group" toml:"default_group"`
}

type TimerConfig struct {
	// AllowOverlap lets "new" start a timer while another is still running
	AllowOverlap bool `mapstructure:"allow_overlap" toml:"allow_overlap"`
}

type ExportConfig struct {
	Format string `mapstructure:"format" toml:"format"` // csv, json or pdf
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level"`   // trace, debug, info, warn, error
	Format string `mapstructure:"format" toml:"format"` // console or json
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: DefaultDBPath()},
		Session:  SessionConfig{DefaultGroup: models.DefaultGroup},
		Timer:    TimerConfig{AllowOverlap: false},
		Export:   ExportConfig{Format: "csv"},
		Logging:  LoggingConfig{Level: "warn", Format: "console"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("session.default_group", d.Session.DefaultGroup)
	v.SetDefault("timer.allow_overlap", d.Timer.AllowOverlap)
	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Load reads configuration. An empty path means DefaultConfigPath; a missing
// default file is not an error, a missing explicit file is.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(ConfigDir(), ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			if explicit {
				return nil, fmt.Errorf("config file %s not found", path)
			}
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Database.Path = ExpandHome(strings.TrimSpace(cfg.Database.Path))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly
func (c Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	if strings.TrimSpace(c.Session.DefaultGroup) == "" {
		errs = append(errs, errors.New("session.default_group must not be empty"))
	}
	switch strings.ToLower(c.Export.Format) {
	case "csv", "json", "pdf":
	default:
		errs = append(errs, fmt.Errorf("export.format %q is not one of csv, json, pdf", c.Export.Format))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// WriteTOML encodes c as TOML
func (c Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// WriteDefault writes the built-in configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Default().WriteTOML(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// loadDotEnv exports variables from a .env file without overriding the environment
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
