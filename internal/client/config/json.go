package config

import (
	"encoding/json"
	"os"

	"github.com/mnln/accounts/internal/flagx"
	"github.com/mnln/accounts/internal/timex"
)

// JsonConfig is the file form of Config. Zero fields leave the current
// value alone.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	DatabasePath   string         `json:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	ArgonMemoryKiB uint32         `json:"argon_memory_kib"`
	ArgonTime      uint32         `json:"argon_time"`
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ArgonMemoryKiB > 0 {
		cfg.Argon.Memory = jc.ArgonMemoryKiB
	}
	if jc.ArgonTime > 0 {
		cfg.Argon.Time = jc.ArgonTime
	}
}

// parseJson overlays cfg with the file named by -c/-config, if any. Read
// and decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	if err := loadJSONFile(path, cfg); err != nil {
		panic(err)
	}
}

func loadJSONFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}
	jc.apply(cfg)
	return nil
}
