package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/clive/class-assigner/internal/roster"
	"github.com/clive/class-assigner/internal/state"
	"github.com/clive/class-assigner/internal/task"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix is prepended to environment overrides (CLASSASSIGN_CLASS_COUNT, ...)
const EnvPrefix = "CLASSASSIGN"

const (
	dirName  = ".class-assigner"
	fileName = "config.yaml"
)

// Config represents the startup configuration
type Config struct {
	Students     int           `mapstructure:"students" validate:"gte=0,lte=100000"`
	Seed         int64         `mapstructure:"seed"` // 0 seeds from OS entropy
	ClassCount   int           `mapstructure:"class_count" validate:"gte=3,lte=30"`
	OptScore     bool          `mapstructure:"opt_score"`
	OptGender    bool          `mapstructure:"opt_gender"`
	StepInterval time.Duration `mapstructure:"step_interval" validate:"gt=0"`
	Route        string        `mapstructure:"route"`
	Debug        bool          `mapstructure:"debug"`
	Log          LogConfig     `mapstructure:"log"`
}

// LogConfig controls the session log file
type LogConfig struct {
	File  string `mapstructure:"file"` // empty disables logging
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Settings returns the assignment preferences for the state container
func (c *Config) Settings() state.Settings {
	return state.Settings{
		ClassCount: c.ClassCount,
		OptScore:   c.OptScore,
		OptGender:  c.OptGender,
	}
}

// flagKeys maps CLI flag names to config keys
var flagKeys = map[string]string{
	"students":  "students",
	"seed":      "seed",
	"route":     "route",
	"debug":     "debug",
	"log-file":  "log.file",
	"log-level": "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("students", roster.DefaultSeedSize)
	v.SetDefault("seed", 0)
	v.SetDefault("class_count", state.DefaultClassCount)
	v.SetDefault("opt_score", true)
	v.SetDefault("opt_gender", true)
	v.SetDefault("step_interval", task.DefaultInterval.String())
	v.SetDefault("route", "/")
	v.SetDefault("debug", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// globalConfigDir returns the global config directory path (~/.class-assigner)
func globalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

// globalConfigPath returns the global config file path
func globalConfigPath() (string, error) {
	dir, err := globalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// projectConfigPath returns the project-level config path in cwd
func projectConfigPath() string {
	return filepath.Join(dirName, fileName)
}

// Load builds the configuration. Precedence, lowest first: defaults, global
// file, project file, .env and CLASSASSIGN_* environment, then any flag in
// flags that was set on the command line. When path is non-empty only that
// file is read and it must exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := mergeFiles(v); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeFiles reads the global file, then the project file on top of it.
// Missing files are skipped.
func mergeFiles(v *viper.Viper) error {
	var paths []string
	if global, err := globalConfigPath(); err == nil {
		paths = append(paths, global)
	}
	paths = append(paths, projectConfigPath())

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		v.SetConfigFile(p)
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks field bounds
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
