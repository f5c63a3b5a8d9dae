package config

import (
	"time"

	"github.com/mnln/accounts/internal/cryptox"
	"github.com/mnln/accounts/internal/filex"
)

// Config holds runtime settings for the CLI.
type Config struct {
	ServerURL      string
	DatabasePath   string
	RequestTimeout time.Duration
	Argon          cryptox.Params
}

// LoadDefaults populates c with defaults matching the web client.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.DatabasePath = filex.DataPath("client.db")
	c.RequestTimeout = 30 * time.Second
	c.Argon = cryptox.WebParams
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
