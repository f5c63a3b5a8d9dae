// Package config loads runtime configuration for the mnln CLI client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Flags
//
//	-a string   base URL of the accounts server
//	-db string  path of the local session database
//	-t int      request timeout (seconds)
//	-m int      argon2id memory cost (KiB)
//
// The JSON file uses timex.Duration for the timeout, so "30s" and integer
// nanoseconds are both accepted:
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "database_path": "/home/me/.config/mnln/client.db",
//	  "request_timeout": "30s",
//	  "argon_memory_kib": 1048576
//	}
//
// The argon2id settings must match the ones the account was registered
// with, otherwise login produces a different hash.
package config
