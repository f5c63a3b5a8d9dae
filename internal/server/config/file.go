package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/mnln/accounts/internal/flagx"
	"github.com/mnln/accounts/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for JSON and YAML files. Durations accept either
// a string such as "10m" or an integer number of nanoseconds. Zero values
// leave the corresponding Config field untouched.
type FileConfig struct {
	HTTPAddr        string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr        string         `json:"grpc_addr" yaml:"grpc_addr"`
	DatabaseDSN     string         `json:"database_dsn" yaml:"database_dsn"`
	MaxDBConns      int            `json:"max_db_connections" yaml:"max_db_connections"`
	SecretKey       string         `json:"secret_key" yaml:"secret_key"`
	S3RootUser      string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region        string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	BaseAPIURL      string         `json:"base_api_url" yaml:"base_api_url"`
	BaseFrontendURL string         `json:"base_frontend_url" yaml:"base_frontend_url"`
	RedisAddr       string         `json:"redis_addr" yaml:"redis_addr"`
	AvatarCacheTTL  timex.Duration `json:"avatar_cache_ttl" yaml:"avatar_cache_ttl"`
	LogLevel        string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays the file named by -c/-config onto config. Files ending
// in .yaml or .yml are decoded as YAML, everything else as JSON. Without the
// flag nothing happens; an unreadable or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(config)
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.GRPCAddr, fc.GRPCAddr)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	if fc.MaxDBConns != 0 {
		c.MaxDBConns = fc.MaxDBConns
	}
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.BaseAPIURL, fc.BaseAPIURL)
	setString(&c.BaseFrontendURL, fc.BaseFrontendURL)
	setString(&c.RedisAddr, fc.RedisAddr)
	if fc.AvatarCacheTTL.Duration != 0 {
		c.AvatarCacheTTL = fc.AvatarCacheTTL.Duration
	}
	setString(&c.LogLevel, fc.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
