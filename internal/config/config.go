// Package config loads mirror's process configuration from mirror.yaml,
// MIRROR_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/mirror/internal/cache"
	"github.com/roach88/mirror/internal/executor"
	"github.com/roach88/mirror/internal/resolve"
)

// EnvPrefix prefixes environment overrides, e.g. MIRROR_STORE_PATH.
const EnvPrefix = "MIRROR"

// Config is the mirror configuration.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Executor ExecutorConfig `mapstructure:"executor"`

	// Sources lists directories of YAML or CUE library files.
	Sources []string `mapstructure:"sources"`
}

// StoreConfig configures the SQLite snapshot store.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig configures the resolver cache.
type CacheConfig struct {
	MaxEntries    int           `mapstructure:"max_entries"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxIdle       time.Duration `mapstructure:"max_idle"`
	Policy        string        `mapstructure:"policy"`
}

// ExecutorConfig configures the invocation backends.
type ExecutorConfig struct {
	Primary       string `mapstructure:"primary"`
	Fallback      bool   `mapstructure:"fallback"`
	OffContext    bool   `mapstructure:"off_context"`
	Introspection bool   `mapstructure:"introspection"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "mirror.db")
	v.SetDefault("cache.max_entries", cache.DefaultConfig().MaxEntries)
	v.SetDefault("cache.sweep_interval", time.Duration(0))
	v.SetDefault("cache.max_idle", time.Duration(0))
	v.SetDefault("cache.policy", resolve.EvictAfterUse.String())
	v.SetDefault("executor.primary", string(executor.BackendPrecomputed))
	v.SetDefault("executor.fallback", true)
	v.SetDefault("executor.off_context", false)
	v.SetDefault("executor.introspection", true)
	v.SetDefault("sources", []string{})
}

// Load reads configuration. An explicit path must exist; with an empty
// path, mirror.yaml in the working directory is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mirror")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("store.path must not be empty")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("cache.sweep_interval must not be negative, got %s", c.Cache.SweepInterval)
	}
	if c.Cache.MaxIdle < 0 {
		return fmt.Errorf("cache.max_idle must not be negative, got %s", c.Cache.MaxIdle)
	}
	if _, err := resolve.ParsePolicy(c.Cache.Policy); err != nil {
		return fmt.Errorf("cache.policy: %w", err)
	}
	if _, err := executor.ParseBackend(c.Executor.Primary); err != nil {
		return fmt.Errorf("executor.primary: %w", err)
	}
	for i, dir := range c.Sources {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("sources[%d] must not be empty", i)
		}
	}
	return nil
}

// CacheSettings converts the cache section for resolve.WithCacheConfig.
func (c *Config) CacheSettings() cache.Config {
	return cache.Config{MaxEntries: c.Cache.MaxEntries, MaxIdle: c.Cache.MaxIdle}
}

// Policy returns the parsed cache policy. Call after Validate.
func (c *Config) Policy() resolve.Policy {
	p, _ := resolve.ParsePolicy(c.Cache.Policy)
	return p
}

// PrimaryBackend returns the parsed primary backend. Call after Validate.
func (c *Config) PrimaryBackend() executor.Backend {
	b, _ := executor.ParseBackend(c.Executor.Primary)
	return b
}

// ExecutorSettings converts the executor section for executor.Build.
func (c *Config) ExecutorSettings() executor.Settings {
	return executor.Settings{
		Primary:       c.PrimaryBackend(),
		Fallback:      c.Executor.Fallback,
		OffContext:    c.Executor.OffContext,
		Introspection: c.Executor.Introspection,
	}
}
