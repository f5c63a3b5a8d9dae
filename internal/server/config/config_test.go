package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"testbin"}, args...)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, 5, c.MaxDBConns)
	assert.Empty(t, c.SecretKey)
	assert.Empty(t, c.RedisAddr)
	assert.Equal(t, 10*time.Minute, c.AvatarCacheTTL)
	assert.Equal(t, "info", c.LogLevel)
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.ErrorIs(t, c.Validate(), ErrEmptySecretKey)

	c.SecretKey = "k"
	require.NoError(t, c.Validate())

	c.MaxDBConns = 0
	require.Error(t, c.Validate())
}

func TestParseFile_JSON(t *testing.T) {
	path := writeFile(t, "server.json", `{
		"http_addr": ":9000",
		"database_dsn": "postgres://x",
		"max_db_connections": 12,
		"secret_key": "from-json",
		"s3_bucket": "avatars",
		"avatar_cache_ttl": "90s"
	}`)
	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
	assert.Equal(t, 12, cfg.MaxDBConns)
	assert.Equal(t, "from-json", cfg.SecretKey)
	assert.Equal(t, "avatars", cfg.S3Bucket)
	assert.Equal(t, 90*time.Second, cfg.AvatarCacheTTL)
	// untouched
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, "us-east-1", cfg.S3Region)
}

func TestParseFile_YAML(t *testing.T) {
	path := writeFile(t, "server.yaml", `
secret_key: from-yaml
redis_addr: localhost:6379
avatar_cache_ttl: 1h
base_api_url: https://api.example.com
log_level: debug
`)
	withArgs(t, "-config", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)

	assert.Equal(t, "from-yaml", cfg.SecretKey)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, time.Hour, cfg.AvatarCacheTTL)
	assert.Equal(t, "https://api.example.com", cfg.BaseAPIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseFile_NoFlagLeavesConfig(t *testing.T) {
	withArgs(t)

	cfg := &Config{}
	cfg.LoadDefaults()
	want := *cfg
	parseFile(cfg)

	assert.Empty(t, cmp.Diff(want, *cfg))
}

func TestParseFile_Panics(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		withArgs(t, "-c", writeFile(t, "bad.json", `{ nope`))
		require.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("invalid yaml", func(t *testing.T) {
		withArgs(t, "-c", writeFile(t, "bad.yml", "secret_key: [unterminated"))
		require.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("missing file", func(t *testing.T) {
		withArgs(t, "-c", filepath.Join(t.TempDir(), "absent.json"))
		require.Panics(t, func() { parseFile(&Config{}) })
	})
}

func TestParseEnv(t *testing.T) {
	t.Setenv(EnvSigningKey, "from-env")
	t.Setenv(EnvDatabaseURL, "postgres://env")
	t.Setenv(EnvMaxDBConns, "7")
	t.Setenv(EnvAvatarCacheTTL, "30s")
	t.Setenv(EnvRedisAddr, "")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, 7, cfg.MaxDBConns)
	assert.Equal(t, 30*time.Second, cfg.AvatarCacheTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestParseEnv_BadNumberPanics(t *testing.T) {
	t.Setenv(EnvMaxDBConns, "many")
	require.Panics(t, func() { parseEnv(&Config{}) })
}

func TestParseFlags(t *testing.T) {
	withArgs(t,
		"-c", "ignored.yaml",
		"-a", "127.0.0.1:8081", "-m", ":6000", "-d", "db", "-n", "3", "-s", "secret",
		"-u", "user", "-p", "password", "-b", "bucket", "-r", "eu-west-1", "-e", "http://minio:9000",
		"-api", "https://api", "-web", "https://web", "-redis", "redis:6379", "-ttl", "2m", "-l", "warn",
	)

	got := &Config{}
	require.NotPanics(t, func() { parseFlags(got) })

	want := &Config{
		HTTPAddr:        "127.0.0.1:8081",
		GRPCAddr:        ":6000",
		DatabaseDSN:     "db",
		MaxDBConns:      3,
		SecretKey:       "secret",
		S3RootUser:      "user",
		S3RootPassword:  "password",
		S3Bucket:        "bucket",
		S3Region:        "eu-west-1",
		S3BaseEndpoint:  "http://minio:9000",
		BaseAPIURL:      "https://api",
		BaseFrontendURL: "https://web",
		RedisAddr:       "redis:6379",
		AvatarCacheTTL:  2 * time.Minute,
		LogLevel:        "warn",
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestParseFlags_BadValuePanics(t *testing.T) {
	withArgs(t, "-n", "lots")
	require.Panics(t, func() { parseFlags(&Config{}) })
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeFile(t, "server.yaml", "secret_key: file\nhttp_addr: \":7000\"\ns3_bucket: file-bucket\n")
	withArgs(t, "-c", path, "-s", "flag")
	t.Setenv(EnvSigningKey, "env")
	t.Setenv(EnvS3Bucket, "env-bucket")

	cfg := LoadConfig()

	assert.Equal(t, "flag", cfg.SecretKey)
	assert.Equal(t, "env-bucket", cfg.S3Bucket)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
}
