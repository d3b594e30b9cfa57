package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	Output           string        `mapstructure:"output"`
	Compression      string        `mapstructure:"compression"`
	CompressionLevel int           `mapstructure:"compression_level"`
	Color            bool          `mapstructure:"color"`
	Format           string        `mapstructure:"format"`
	Template         string        `mapstructure:"template"`
	Logging          LoggingConfig `mapstructure:"logging"`
}

// New returns a viper instance with defaults, environment binding and the
// config search path set up. A non-empty file is used instead of searching.
// The file is not read yet; see Read.
func New(file string) *viper.Viper {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("output", DefaultOutput)
	v.SetDefault("compression", DefaultCompression)
	v.SetDefault("compression_level", DefaultCompressionLevel)
	v.SetDefault("color", DefaultColor)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("template", "")
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // empty disables the log file

	return v
}

// Read loads the config file into v, if one exists, and decodes the merged
// settings. A missing file in the search path is not an error; a missing
// file given explicitly is.
func Read(v *viper.Viper) (*Config, error) {
	if file := v.ConfigFileUsed(); file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Logging.Path != "" {
		p, err := ExpandPath(cfg.Logging.Path)
		if err != nil {
			return nil, err
		}
		cfg.Logging.Path = p
	}
	return &cfg, nil
}

// Load is New followed by Read.
func Load(file string) (*Config, error) {
	return Read(New(file))
}

// ConfigDir returns the configuration directory:
// $XDG_CONFIG_HOME/filedex when set, ~/.config/filedex otherwise.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/filedex/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultLogPath returns the suggested log file location.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), appName+".log")
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left alone.
func WriteDefault() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# filedex configuration

# Archive written by "filedex create" when no output file is given
output: %s

# Archive compression: gzip, zstd, lz4 or none
compression: %s

# Codec-specific level; 0 uses the codec default
compression_level: %d

# Highlight matches in search output
color: %t

# Search output format: plain, null, json, jsonl, yaml, csv, markdown, pretty, template
format: %s

# Go text/template used by the template format
template: ""

logging:
  # Log level: debug, info, warn, error
  level: %s
  # Debug log file (empty disables it; suggested: %s)
  path: ""
`, DefaultOutput, DefaultCompression, DefaultCompressionLevel, DefaultColor, DefaultFormat, DefaultLogLevel, DefaultLogPath())

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return path, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
