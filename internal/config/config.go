// Package config assembles runtime settings from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "MONITOR_"

// Config holds runtime settings for the monitoring API.
type Config struct {
	Addr        string        `yaml:"addr"`
	Production  bool          `yaml:"production"`
	DatabaseDSN string        `yaml:"database_dsn"`
	TokenSecret string        `yaml:"-"` // env only, never persisted to disk
	TokenTTL    time.Duration `yaml:"token_ttl"`
	CORSOrigin  string        `yaml:"cors_origin"`

	LoginRateLimit  int           `yaml:"login_rate_limit"`
	LoginRateWindow time.Duration `yaml:"login_rate_window"`
}

// Defaults returns development defaults. Override for production via file or
// environment.
func Defaults() Config {
	return Config{
		Addr:            ":8080",
		TokenTTL:        8 * time.Hour,
		CORSOrigin:      "http://localhost:5173",
		LoginRateLimit:  5,
		LoginRateWindow: 15 * time.Minute,
	}
}

// Load builds a Config by applying defaults, then overlaying the YAML file at
// path (if non-empty) and finally MONITOR_* environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envPrefix + "ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(envPrefix + "PRODUCTION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %sPRODUCTION: %w", envPrefix, err)
		}
		c.Production = b
	}
	if v := os.Getenv(envPrefix + "PG_DSN"); v != "" {
		c.DatabaseDSN = v
	}
	if v := os.Getenv(envPrefix + "AUTH_SECRET"); v != "" {
		c.TokenSecret = v
	}
	if v := os.Getenv(envPrefix + "TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %sTOKEN_TTL: %w", envPrefix, err)
		}
		c.TokenTTL = d
	}
	if v := os.Getenv(envPrefix + "CORS_ORIGIN"); v != "" {
		c.CORSOrigin = v
	}
	return nil
}
