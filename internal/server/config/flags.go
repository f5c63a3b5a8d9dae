package config

import (
	"flag"
	"os"

	"github.com/mnln/accounts/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string    HTTP bind address (e.g. ":8080")
//	-m string    gRPC health bind address
//	-d string    PostgreSQL DSN
//	-n int       max open DB connections
//	-s string    JWT signing key
//	-u string    S3 root user
//	-p string    S3 root password
//	-b string    S3 bucket
//	-r string    S3 region
//	-e string    S3 base endpoint
//	-api string  base API URL used in avatar links
//	-web string  frontend origin allowed by CORS
//	-redis string  Redis address, empty disables the avatar cache
//	-ttl duration  avatar cache TTL
//	-l string    log level
//
// os.Args is filtered through flagx.FilterArgs first so the -c/-config
// flag handled by parseFile does not trip this flag set.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-n", "-s", "-u", "-p", "-b", "-r", "-e",
		"-api", "-web", "-redis", "-ttl", "-l",
	})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP bind address")
	fs.StringVar(&config.GRPCAddr, "m", config.GRPCAddr, "gRPC health bind address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.MaxDBConns, "n", config.MaxDBConns, "max open DB connections")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT signing key")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.BaseAPIURL, "api", config.BaseAPIURL, "base API URL")
	fs.StringVar(&config.BaseFrontendURL, "web", config.BaseFrontendURL, "frontend origin")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "Redis address")
	fs.DurationVar(&config.AvatarCacheTTL, "ttl", config.AvatarCacheTTL, "avatar cache TTL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
