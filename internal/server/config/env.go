package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables read by parseEnv. Unset or empty variables are
// ignored; malformed numbers and durations panic like a bad config file.
const (
	EnvHTTPAddr        = "HTTP_ADDR"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvMaxDBConns      = "MAX_DB_CONNECTIONS"
	EnvSigningKey      = "JWT_SIGNING_KEY"
	EnvS3User          = "S3_ROOT_USER"
	EnvS3Password      = "S3_ROOT_PASSWORD"
	EnvS3Bucket        = "S3_BUCKET"
	EnvS3Region        = "S3_REGION"
	EnvS3Endpoint      = "S3_BASE_ENDPOINT"
	EnvBaseAPIURL      = "BASE_API_URL"
	EnvBaseFrontendURL = "BASE_FRONTEND_URL"
	EnvRedisAddr       = "REDIS_ADDR"
	EnvAvatarCacheTTL  = "AVATAR_CACHE_TTL"
	EnvLogLevel        = "LOG_LEVEL"
)

func parseEnv(config *Config) {
	envString(&config.HTTPAddr, EnvHTTPAddr)
	envString(&config.DatabaseDSN, EnvDatabaseURL)
	envString(&config.SecretKey, EnvSigningKey)
	envString(&config.S3RootUser, EnvS3User)
	envString(&config.S3RootPassword, EnvS3Password)
	envString(&config.S3Bucket, EnvS3Bucket)
	envString(&config.S3Region, EnvS3Region)
	envString(&config.S3BaseEndpoint, EnvS3Endpoint)
	envString(&config.BaseAPIURL, EnvBaseAPIURL)
	envString(&config.BaseFrontendURL, EnvBaseFrontendURL)
	envString(&config.RedisAddr, EnvRedisAddr)
	envString(&config.LogLevel, EnvLogLevel)

	if v := os.Getenv(EnvMaxDBConns); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.MaxDBConns = n
	}

	if v := os.Getenv(EnvAvatarCacheTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.AvatarCacheTTL = d
	}
}

func envString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
