package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the mapexport configuration
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Registry RegistryConfig `mapstructure:"registry"`
	Log      LogConfig      `mapstructure:"log"`
}

// OutputConfig controls where program files are written
type OutputConfig struct {
	Dir       string `mapstructure:"dir"`
	Extension string `mapstructure:"extension"`
	Overwrite bool   `mapstructure:"overwrite"`
}

// RegistryConfig locates the export log database. An empty DSN disables it.
type RegistryConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Enabled reports whether an export log is configured
func (r RegistryConfig) Enabled() bool {
	return r.DSN != ""
}

// Load loads the configuration from mapexport.yml or mapexport.yaml in the
// working directory
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads the configuration from path, or from the working directory
// when path is empty
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("output.dir", "build/mapping")
	v.SetDefault("output.extension", ".mapping")
	v.SetDefault("output.overwrite", false)
	v.SetDefault("registry.driver", "sqlite3")
	v.SetDefault("registry.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mapexport")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("MAPEXPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if !strings.HasPrefix(cfg.Output.Extension, ".") {
		return fmt.Errorf("output.extension must start with '.', got: %s", cfg.Output.Extension)
	}
	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	switch cfg.Registry.Driver {
	case "sqlite3", "pgx", "postgres":
	default:
		return fmt.Errorf("registry.driver must be sqlite3, pgx or postgres, got: %s", cfg.Registry.Driver)
	}
	return nil
}
