// Package config provides configuration loading for taskvoiced.
//
// Configuration is loaded from a YAML file with environment variable
// overrides. This package covers the HTTP server, authentication,
// task storage, and logging settings.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete taskvoiced configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Auth    AuthConfig    `koanf:"auth"`
	Tasks   TasksConfig   `koanf:"tasks"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimit is the sustained fulfillment requests per second
	// allowed per conversation session. Burst is twice this value.
	RateLimit float64 `koanf:"rate_limit"`
}

// AuthConfig holds credential verification configuration.
type AuthConfig struct {
	// Verifier selects the credential verifier implementation.
	// "google" validates Google ID tokens; "static" trusts the
	// credential payload as-is and is for development only.
	Verifier string `koanf:"verifier"`

	// Audience is the OAuth client ID the credential must be issued for.
	// Required when Verifier is "google".
	Audience string `koanf:"audience"`
}

// TasksConfig holds task store configuration.
type TasksConfig struct {
	// Backend selects the store implementation: "mongo" or "memory".
	Backend string `koanf:"backend"`

	// MongoURI is the connection string for the mongo backend.
	MongoURI Secret `koanf:"mongo_uri"`

	// Database and Collection name the task collection location.
	Database   string `koanf:"database"`
	Collection string `koanf:"collection"`

	// OpTimeout bounds a single store operation (insert, query, ping).
	OpTimeout time.Duration `koanf:"op_timeout"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

const (
	// VerifierGoogle validates Google ID tokens against the configured audience.
	VerifierGoogle = "google"
	// VerifierStatic accepts any structurally valid credential. Development only.
	VerifierStatic = "static"

	// BackendMongo stores tasks in MongoDB.
	BackendMongo = "mongo"
	// BackendMemory stores tasks in process memory. Development and tests only.
	BackendMemory = "memory"
)

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 5
	}

	if cfg.Auth.Verifier == "" {
		cfg.Auth.Verifier = VerifierGoogle
	}

	if cfg.Tasks.Backend == "" {
		cfg.Tasks.Backend = BackendMongo
	}
	if cfg.Tasks.Database == "" {
		cfg.Tasks.Database = "taskvoice"
	}
	if cfg.Tasks.Collection == "" {
		cfg.Tasks.Collection = "tasks"
	}
	if cfg.Tasks.OpTimeout == 0 {
		cfg.Tasks.OpTimeout = 5 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown timeout or rate limit is not positive
//   - An unknown verifier or backend is selected
//   - The google verifier is selected without an audience
//   - The mongo backend is selected without a connection URI
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit <= 0 {
		return errors.New("rate limit must be positive")
	}

	switch c.Auth.Verifier {
	case VerifierGoogle:
		if c.Auth.Audience == "" {
			return errors.New("auth audience required for the google verifier")
		}
	case VerifierStatic:
	default:
		return fmt.Errorf("unknown auth verifier: %q", c.Auth.Verifier)
	}

	switch c.Tasks.Backend {
	case BackendMongo:
		if !c.Tasks.MongoURI.IsSet() {
			return errors.New("mongo URI required for the mongo backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown tasks backend: %q", c.Tasks.Backend)
	}

	if c.Tasks.OpTimeout <= 0 {
		return errors.New("tasks op timeout must be positive")
	}

	return nil
}
