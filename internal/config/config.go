// Package config loads settings from defaults, an optional pastrypath.yaml,
// a .env file and PASTRYPATH_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pastrypath/pastrypath/internal/unlock"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	DB        string          `mapstructure:"db"`
	Catalog   string          `mapstructure:"catalog"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Unlock    unlock.Policy   `mapstructure:"unlock"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

type StorageConfig struct {
	Backend     string `mapstructure:"backend"`
	RedisURL    string `mapstructure:"redis_url"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"` // dev, quiet, prod or nop
}

type RecommendConfig struct {
	PopularityCeiling int `mapstructure:"popularity_ceiling"`
}

// Load reads configuration. configFile may be empty, in which case
// pastrypath.yaml is looked up in the working directory and
// $XDG_CONFIG_HOME/pastrypath; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PASTRYPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("pastrypath")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			v.AddConfigPath(dir + "/pastrypath")
		}
		v.AddConfigPath("$HOME/.config/pastrypath")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	policy := unlock.DefaultPolicy()

	v.SetDefault("db", "")
	v.SetDefault("catalog", "")
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.redis_url", "redis://localhost:6379/0")
	v.SetDefault("storage.redis_prefix", "pastrypath:")
	v.SetDefault("log.mode", "quiet")
	v.SetDefault("unlock.advanced_min_score", policy.AdvancedMinScore)
	v.SetDefault("unlock.long_module_minutes", policy.LongModuleMinutes)
	v.SetDefault("unlock.long_module_time_fraction", policy.LongModuleTimeFraction)
	v.SetDefault("unlock.quiz_min_attempts", policy.QuizMinAttempts)
	v.SetDefault("recommend.popularity_ceiling", 10000)
}

// Validate checks value ranges that decoding cannot.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if c.Unlock.LongModuleTimeFraction < 0 || c.Unlock.LongModuleTimeFraction > 1 {
		return fmt.Errorf("unlock.long_module_time_fraction must be within [0,1], got %v", c.Unlock.LongModuleTimeFraction)
	}
	if c.Unlock.AdvancedMinScore < 0 || c.Unlock.AdvancedMinScore > 100 {
		return fmt.Errorf("unlock.advanced_min_score must be within [0,100], got %v", c.Unlock.AdvancedMinScore)
	}
	if c.Recommend.PopularityCeiling <= 0 {
		return fmt.Errorf("recommend.popularity_ceiling must be positive, got %d", c.Recommend.PopularityCeiling)
	}
	return nil
}
