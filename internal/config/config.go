// Package config manages application configuration from various sources.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/robert-claypool/dotfiles/internal/format"
	"github.com/spf13/viper"
)

// LogConfig defines where and how much the hook logs.
type LogConfig struct {
	Level string `json:"level,omitempty" mapstructure:"level"`
	Path  string `json:"path,omitempty" mapstructure:"path"`
}

// StateConfig defines the session state file.
type StateConfig struct {
	Path string `json:"path,omitempty" mapstructure:"path"`
	Lock bool   `json:"lock" mapstructure:"lock"`
}

// OutputConfig defines how reminders are written to stdout.
type OutputConfig struct {
	Format format.OutputFormat `json:"format,omitempty" mapstructure:"format"`
}

// PayloadConfig points at files replacing the built-in reminder texts. An
// empty path, an unreadable file or an empty file keeps the built-in text.
type PayloadConfig struct {
	FullFile    string `json:"full_file,omitempty" mapstructure:"full_file"`
	CompactFile string `json:"compact_file,omitempty" mapstructure:"compact_file"`
}

// HistoryConfig defines the optional journal of dispatched events.
type HistoryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path,omitempty" mapstructure:"path"`
}

// Config is the main configuration structure for the application.
type Config struct {
	Debug   bool          `json:"debug,omitempty" mapstructure:"debug"`
	Log     LogConfig     `json:"log" mapstructure:"log"`
	State   StateConfig   `json:"state" mapstructure:"state"`
	Output  OutputConfig  `json:"output" mapstructure:"output"`
	Payload PayloadConfig `json:"payload" mapstructure:"payload"`
	History HistoryConfig `json:"history" mapstructure:"history"`
}

// Application constants
const (
	AppName = "context-reminder"

	defaultLogLevel    = "warn"
	stateFileName      = "state.json"
	logFileName        = "hook.log"
	historyFileName    = "history.db"
	configFileBaseName = "config"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Dir returns the directory dedicated to the hook under the user's
// configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return filepath.Join(os.TempDir(), AppName)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName)
}

// Load reads configuration from configFile, or from the standard search
// paths when configFile is empty, then from CONTEXT_REMINDER_* environment
// variables. The returned Config is always usable; a non-nil error reports
// problems that were replaced by defaults.
func Load(configFile string, debug bool) (*Config, error) {
	v := viper.New()
	configureViper(v, configFile)
	setDefaults(v, debug)

	var errs []error
	if err := readConfig(v.ReadInConfig()); err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		errs = append(errs, fmt.Errorf("failed to unmarshal config: %w", err))
		cfg = defaults(debug)
	}
	if debug {
		cfg.Debug = true
	}

	if err := Validate(cfg); err != nil {
		errs = append(errs, fmt.Errorf("config validation failed: %w", err))
	}
	return cfg, errors.Join(errs...)
}

// configureViper sets up viper's configuration paths and environment variables.
func configureViper(v *viper.Viper, configFile string) {
	v.SetConfigType("json")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileBaseName)
		v.AddConfigPath(Dir())
		v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", AppName))
	}
	v.SetEnvPrefix(strings.ToUpper(strings.ReplaceAll(AppName, "-", "_")))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults configures default values for configuration options.
func setDefaults(v *viper.Viper, debug bool) {
	dir := Dir()
	v.SetDefault("state.path", filepath.Join(dir, stateFileName))
	v.SetDefault("state.lock", true)
	v.SetDefault("log.path", filepath.Join(dir, logFileName))
	v.SetDefault("output.format", string(format.TextFormat))
	v.SetDefault("payload.full_file", "")
	v.SetDefault("payload.compact_file", "")
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", filepath.Join(dir, historyFileName))

	if debug {
		v.SetDefault("debug", true)
		v.Set("log.level", "debug")
	} else {
		v.SetDefault("debug", false)
		v.SetDefault("log.level", defaultLogLevel)
	}
}

func defaults(debug bool) *Config {
	v := viper.New()
	setDefaults(v, debug)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// readConfig handles the result of reading a configuration file.
func readConfig(err error) error {
	if err == nil {
		return nil
	}

	// It's okay if the config file doesn't exist
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to read config: %w", err)
}

// Validate checks if the configuration is valid and applies defaults where needed.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	var errs []error
	if !cfg.Output.Format.IsValid() {
		errs = append(errs, fmt.Errorf("unsupported output format %q, using %q", cfg.Output.Format, format.TextFormat))
		cfg.Output.Format = format.TextFormat
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Debug {
		cfg.Log.Level = "debug"
	}
	if !slices.Contains(validLogLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Errorf("unsupported log level %q, using %q", cfg.Log.Level, defaultLogLevel))
		cfg.Log.Level = defaultLogLevel
	}

	if cfg.State.Path == "" {
		cfg.State.Path = filepath.Join(Dir(), stateFileName)
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(Dir(), historyFileName)
	}
	return errors.Join(errs...)
}
