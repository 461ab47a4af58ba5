// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

// Package config loads runtime configuration from defaults, an optional
// YAML file, environment variables and command-line flags, in that
// order of precedence (later wins).
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full runtime configuration.
type Config struct {
	// ListenAddr is the main HTTP listen address.
	ListenAddr string `koanf:"listen_addr"`
	// MetricsAddr is the observability listen address; empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`
	// Environment is "development" or "production". Production marks
	// session cookies Secure.
	Environment string `koanf:"environment"`
	// BaseURL is the public website origin used in email links.
	BaseURL string `koanf:"base_url"`
	// ProtectedPattern is the route-guard path pattern; empty uses the
	// built-in members-subtree default.
	ProtectedPattern string `koanf:"protected_pattern"`
	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// The certs subcommand generates a self-signed pair for development.
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	DatabaseURL string `koanf:"database_url"`

	// SessionSigningKey signs session assertions. Required.
	SessionSigningKey string `koanf:"session_signing_key"`

	SMTP SMTPConfig `koanf:"smtp"`
}

// SMTPConfig holds mail delivery settings.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// Production reports whether the production environment is configured.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

func defaults() map[string]any {
	return map[string]any{
		"listen_addr":       ":8080",
		"metrics_addr":      "127.0.0.1:9100",
		"environment":       "development",
		"base_url":          "http://localhost:8080",
		"protected_pattern": "",
		"log_format":        "json",
		"smtp.host":         "localhost",
		"smtp.port":         587,
		"smtp.from":         "no-reply@localhost",
	}
}

// Load builds the configuration. path names an optional YAML file; flags
// may be nil. Environment variables use the MEMBERSITE_ prefix with
// underscores, e.g. MEMBERSITE_SESSION_SIGNING_KEY or
// MEMBERSITE_SMTP__PASSWORD for nested keys.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	err := k.Load(env.Provider("MEMBERSITE_", ".", func(s string) string {
		// MEMBERSITE_SMTP__PASSWORD -> smtp.password
		s = strings.TrimPrefix(s, "MEMBERSITE_")
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
	if err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSigningKey == "" {
		return oops.Code("CONFIG_MISSING_SIGNING_KEY").
			Errorf("session signing key is required (MEMBERSITE_SESSION_SIGNING_KEY)")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_MISSING_DATABASE_URL").
			Errorf("database URL is required (MEMBERSITE_DATABASE_URL)")
	}
	if c.Environment != "development" && c.Environment != "production" {
		return oops.Code("CONFIG_INVALID_ENVIRONMENT").
			With("environment", c.Environment).
			Errorf("environment must be development or production")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return oops.Code("CONFIG_INCOMPLETE_TLS").
			Errorf("tls_cert_file and tls_key_file must be set together")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID_LOG_FORMAT").
			With("log_format", c.LogFormat).
			Errorf("log format must be json or text")
	}
	return nil
}
