// Package config loads ReportGate settings from defaults, an optional YAML
// file, REPORTGATE_* environment variables and command-line overrides, in
// increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "REPORTGATE_"

// Config is the complete gateway configuration.
type Config struct {
	Server ServerConfig `koanf:"server" yaml:"server"`
	Cache  CacheConfig  `koanf:"cache"  yaml:"cache"`
	Render RenderConfig `koanf:"render" yaml:"render"`
	Log    LogConfig    `koanf:"log"    yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"             yaml:"host"`
	Port            int           `koanf:"port"             yaml:"port"             validate:"min=1,max=65535"`
	APIPrefix       string        `koanf:"api_prefix"       yaml:"api_prefix"       validate:"required,startswith=/"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"   yaml:"max_body_bytes"   validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CacheConfig configures artifact retention.
type CacheConfig struct {
	TTL           time.Duration `koanf:"ttl"            yaml:"ttl"            validate:"gt=0"`
	SweepInterval time.Duration `koanf:"sweep_interval" yaml:"sweep_interval" validate:"gt=0,ltfield=TTL"`
	StopTimeout   time.Duration `koanf:"stop_timeout"   yaml:"stop_timeout"   validate:"gt=0"`
}

// RenderConfig selects the rendering engine. An empty RemoteURL uses the
// built-in engines.
type RenderConfig struct {
	RemoteURL     string        `koanf:"remote_url"     yaml:"remote_url"     validate:"omitempty,url"`
	RemoteTimeout time.Duration `koanf:"remote_timeout" yaml:"remote_timeout" validate:"gt=0"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"  yaml:"json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			APIPrefix:       "/api/report",
			MaxBodyBytes:    32 << 20,
			ShutdownTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			TTL:           time.Hour,
			SweepInterval: 5 * time.Minute,
			StopTimeout:   2 * time.Second,
		},
		Render: RenderConfig{
			RemoteTimeout: 60 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Options selects the sources Load reads.
type Options struct {
	// File is an optional YAML file. Empty skips it.
	File string
	// Overrides are dotted keys applied last, e.g. "server.port".
	Overrides map[string]any
	// Environ replaces os.Environ, for tests.
	Environ func() []string
}

// Load builds and validates the configuration.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if opts.File != "" {
		data, err := readYAML(opts.File)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawMap(data), nil); err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", opts.File, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
		EnvironFunc:   opts.Environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func readYAML(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return data, nil
}

// transformEnvKey maps REPORTGATE_CACHE_SWEEP_INTERVAL to cache.sweep_interval.
func transformEnvKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok || section == "" || field == "" {
		return "", nil
	}
	return section + "." + field, value
}

// rawMap is a koanf.Provider adapter for map[string]any data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
