// Package config loads yobatis settings from defaults, .yobatis.yaml, .env
// files, YOBATIS_* environment variables and bound command flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-version"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yobatis-go/yobatis/internal/debug"
	"github.com/yobatis-go/yobatis/internal/mapper"
)

var AppFs = afero.NewOsFs()

const (
	configName = ".yobatis"
	envPrefix  = "YOBATIS"
)

// MySQL holds the connection settings used by init.
type MySQL struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// Config holds the application configuration.
type Config struct {
	MySQL           MySQL  `mapstructure:"mysql"`
	Input           string `mapstructure:"input" validate:"required"`
	Output          string `mapstructure:"output" validate:"required"`
	MapperPattern   string `mapstructure:"mapper_pattern" validate:"required,mapper_pattern"`
	Jobs            int    `mapstructure:"jobs" validate:"min=0"`
	RequiredVersion string `mapstructure:"required_version" validate:"omitempty,version_constraint"`
}

// ErrInvalidConfig is returned when the loaded configuration does not
// validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// LoadConfig loads configuration from various sources.
func LoadConfig() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetFs(AppFs)
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "yobatis"))

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		debug.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	}

	if _, err := AppFs.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			debug.Warn("Failed to load .env", "error", err)
		}
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			debug.Warn("Failed to load .env.local", "error", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("mysql.host", "localhost")
	viper.SetDefault("mysql.port", 3306)
	viper.SetDefault("mysql.user", "")
	viper.SetDefault("mysql.password", "")
	viper.SetDefault("mysql.database", "")
	viper.SetDefault("input", ".")
	viper.SetDefault("output", ".")
	viper.SetDefault("mapper_pattern", mapper.DefaultPattern)
	viper.SetDefault("jobs", runtime.NumCPU())
	viper.SetDefault("required_version", "")
}

// BindFlags binds command flags to configuration keys. keys maps a key to
// the flag name that overrides it.
func BindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q for key %s", name, key)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mapper_pattern", func(fl validator.FieldLevel) bool {
		return mapper.ValidPattern(fl.Field().String())
	})
	_ = v.RegisterValidation("version_constraint", func(fl validator.FieldLevel) bool {
		_, err := version.NewConstraint(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateConnection checks the settings init needs to reach MySQL.
func (c *Config) ValidateConnection() error {
	var missing []string
	if c.MySQL.User == "" {
		missing = append(missing, "mysql.user")
	}
	if c.MySQL.Database == "" {
		missing = append(missing, "mysql.database")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return nil
}

// SaveConfig writes the non-secret settings to .yobatis.yaml in dir.
func SaveConfig(cfg *Config, dir string) (string, error) {
	v := viper.New()
	v.SetFs(AppFs)
	v.Set("mysql.host", cfg.MySQL.Host)
	v.Set("mysql.port", cfg.MySQL.Port)
	v.Set("mysql.user", cfg.MySQL.User)
	v.Set("mysql.database", cfg.MySQL.Database)
	v.Set("input", cfg.Input)
	v.Set("output", cfg.Output)
	v.Set("mapper_pattern", cfg.MapperPattern)

	if err := AppFs.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, configName+".yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
