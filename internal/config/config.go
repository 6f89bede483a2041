package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "STUDYHUB"
	defaultHTTPAddress  = "127.0.0.1:8080"
	defaultStoragePath  = "studyhub.db"
	defaultLogLevel     = "info"
	defaultAutosave     = time.Second
	defaultTickInterval = 300 * time.Millisecond
	maxTickInterval     = time.Second
)

// Storage drivers understood by the composition root.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// AppConfig captures runtime configuration for the CLI and the local server.
type AppConfig struct {
	HTTPAddress    string
	AllowedOrigins []string
	StorageDriver  string
	StoragePath    string
	LogLevel       string
	AutosaveDelay  time.Duration
	TickInterval   time.Duration
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("http.allowed_origins", []string{"*"})
	configViper.SetDefault("storage.driver", DriverSQLite)
	configViper.SetDefault("storage.path", defaultStoragePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("autosave.delay", defaultAutosave)
	configViper.SetDefault("timer.tick_interval", defaultTickInterval)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    strings.TrimSpace(configViper.GetString("http.address")),
		AllowedOrigins: trimNonEmpty(configViper.GetStringSlice("http.allowed_origins")),
		StorageDriver:  strings.ToLower(strings.TrimSpace(configViper.GetString("storage.driver"))),
		StoragePath:    strings.TrimSpace(configViper.GetString("storage.path")),
		LogLevel:       configViper.GetString("log.level"),
		AutosaveDelay:  configViper.GetDuration("autosave.delay"),
		TickInterval:   configViper.GetDuration("timer.tick_interval"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	switch c.StorageDriver {
	case DriverSQLite, DriverBadger:
		if c.StoragePath == "" {
			return fmt.Errorf("storage.path is required for the %s driver", c.StorageDriver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.StorageDriver)
	}
	if c.AutosaveDelay <= 0 {
		return fmt.Errorf("autosave.delay must be positive")
	}
	if c.TickInterval <= 0 || c.TickInterval > maxTickInterval {
		return fmt.Errorf("timer.tick_interval must be within (0, %s]", maxTickInterval)
	}
	return nil
}

func trimNonEmpty(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		if candidate := strings.TrimSpace(value); candidate != "" {
			trimmed = append(trimmed, candidate)
		}
	}
	return trimmed
}
