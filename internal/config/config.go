// Package config loads process configuration from the environment (with
// optional .env fallback) and secrets from a TOML file. The core receives
// the derived store handle and registry, never raw configuration.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using system environment variables")
	}
}

// Config is the process configuration.
type Config struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabasePath    string        `env:"DATABASE_PATH" envDefault:"banker.db"`
	SecretsPath     string        `env:"SECRETS_PATH" envDefault:"secrets.toml"`
	CommandPrefix   string        `env:"COMMAND_PREFIX" envDefault:"!"`
	HTTPServerID    string        `env:"HTTP_SERVER_ID" envDefault:"http"`
	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"10s"`
	MaxConcurrent   int64         `env:"MAX_CONCURRENT" envDefault:"64"`
}

// Secrets holds credentials kept out of the environment.
type Secrets struct {
	DiscordToken string `toml:"discord_token"`
}

// New parses the environment into a Config.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Debug reports whether debug logging was requested.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// LoadSecrets reads the secrets file. A missing file is not fatal: the
// gateway transport simply stays disabled without a token.
func (c *Config) LoadSecrets() (Secrets, error) {
	var s Secrets
	if _, err := os.Stat(c.SecretsPath); os.IsNotExist(err) {
		log.Printf("[WARN] Secrets file %s not found", c.SecretsPath)
		return s, nil
	}
	if _, err := toml.DecodeFile(c.SecretsPath, &s); err != nil {
		return s, fmt.Errorf("decode secrets file %s: %w", c.SecretsPath, err)
	}
	return s, nil
}
