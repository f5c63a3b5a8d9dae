package config

import (
	"flag"
	"os"
	"time"

	"github.com/mnln/accounts/internal/flagx"
)

var clientFlags = []string{"-a", "-db", "-t", "-m"}

func parseFlags(cfg *Config) {
	if err := applyFlags(cfg, flagx.FilterArgs(os.Args[1:], clientFlags)); err != nil {
		panic(err)
	}
}

func applyFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the accounts server")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "path of the local session database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	memory := fs.Uint("m", uint(cfg.Argon.Memory), "argon2id memory cost (KiB)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.Argon.Memory = uint32(*memory)
	return nil
}
