package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full server configuration. Keys map one-to-one to the
// YAML file and to MATHBEAST_* environment overrides.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Gateway GatewayConfig `koanf:"gateway"`
	Log     LogConfig     `koanf:"log"`
}

// Keys stay single-word so MATHBEAST_GATEWAY_APIKEY maps cleanly to
// gateway.apikey through the underscore-to-dot rewrite.
type ServerConfig struct {
	Port        int      `koanf:"port"`
	CORSOrigins []string `koanf:"origins"`
}

// GatewayConfig selects the language-model gateway. Provider "mock"
// serves canned responses and needs no credentials.
type GatewayConfig struct {
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	APIKey   string `koanf:"apikey"`
	BaseURL  string `koanf:"baseurl"`
}

type LogConfig struct {
	Mode string `koanf:"mode"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Gateway: GatewayConfig{
			Provider: "mock",
			Model:    "claude-sonnet-4-20250514",
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (MATHBEAST_*). A missing file is not
// an error; defaults and the environment cover it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// MATHBEAST_SERVER_PORT -> server.port, etc.
	if err := k.Load(env.Provider("MATHBEAST_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "MATHBEAST_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

var validProviders = map[string]bool{
	"anthropic": true,
	"openai":    true,
	"mock":      true,
}

var validLogModes = map[string]bool{
	"development": true,
	"production":  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if c.Gateway.Provider == "" {
		return fmt.Errorf("gateway provider is required")
	}
	if !validProviders[c.Gateway.Provider] {
		return fmt.Errorf("invalid gateway provider %q: must be one of anthropic, openai, mock", c.Gateway.Provider)
	}
	if c.Gateway.Provider != "mock" && c.Gateway.Model == "" {
		return fmt.Errorf("gateway model is required for provider %q", c.Gateway.Provider)
	}

	if c.Log.Mode != "" && !validLogModes[c.Log.Mode] {
		return fmt.Errorf("invalid log mode %q: must be development or production", c.Log.Mode)
	}

	return nil
}
