// Package config handles loading and validation of client configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopflow/shopflow-client/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Store backends for the persistent session store.
const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
)

// APIConfig holds connection details for the ShopFlow REST backend.
type APIConfig struct {
	// BaseURL is the single build-time override for the backend location.
	BaseURL        string `mapstructure:"BASE_URL"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS"`
}

// StoreConfig selects and configures the session store backend.
type StoreConfig struct {
	Backend string `mapstructure:"BACKEND"`
	// KeyPrefix namespaces this client's keys when the backend is shared.
	KeyPrefix string `mapstructure:"KEY_PREFIX"`
}

// RedisConfig holds Redis connection details for the redis store backend.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
	UseTLS   bool   `mapstructure:"USE_TLS"`
}

// GuestConfig holds limits applied in guest mode.
type GuestConfig struct {
	// InventoryLimit is the maximum number of items a guest may hold before
	// being prompted to sign up.
	InventoryLimit int `mapstructure:"INVENTORY_LIMIT"`
}

// Config aggregates all client configuration sections.
type Config struct {
	Environment Environment `mapstructure:"ENVIRONMENT"`
	API         APIConfig   `mapstructure:"API"`
	Store       StoreConfig `mapstructure:"STORE"`
	Redis       RedisConfig `mapstructure:"REDIS"`
	Guest       GuestConfig `mapstructure:"GUEST"`
}

// IsDevelopment returns true if the client is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// IsProduction returns true if the client is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("ENVIRONMENT", EnvDevelopment)
	v.SetDefault("API.BASE_URL", "http://localhost:5000/api")
	v.SetDefault("API.TIMEOUT_SECONDS", 15)
	v.SetDefault("STORE.BACKEND", StoreBackendMemory)
	v.SetDefault("STORE.KEY_PREFIX", "shopflow:")
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("GUEST.INVENTORY_LIMIT", 2)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"ENVIRONMENT", "ENVIRONMENT"},
		{"API.BASE_URL", "SHOPFLOW_API_URL"},
		{"API.TIMEOUT_SECONDS", "SHOPFLOW_API_TIMEOUT_SECONDS"},
		{"STORE.BACKEND", "SESSION_STORE_BACKEND"},
		{"STORE.KEY_PREFIX", "SESSION_STORE_KEY_PREFIX"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"GUEST.INVENTORY_LIMIT", "GUEST_INVENTORY_LIMIT"},
	}
	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Environment,
		"apiBaseURL", cfg.API.BaseURL,
		"storeBackend", cfg.Store.Backend,
	)
	return &cfg, nil
}

// Validate checks the configuration for values that would fail at first use.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid environment: %q", c.Environment)
	}

	parsed, err := url.Parse(c.API.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid API base URL: %q", c.API.BaseURL)
	}

	switch c.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis store backend selected but REDIS_ADDRESS is empty")
		}
	default:
		return fmt.Errorf("unknown session store backend: %q", c.Store.Backend)
	}

	if c.Guest.InventoryLimit < 1 {
		return fmt.Errorf("guest inventory limit must be at least 1, got %d", c.Guest.InventoryLimit)
	}

	return nil
}
