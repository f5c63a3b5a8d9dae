// Package cli provides the interactive mnln command-line client.
//
// It mirrors the web client's account flow: register, log in, upload an
// avatar and look at the profile page data. Passwords are hashed locally
// with argon2id and never leave the machine. The session token is kept in
// a local SQLite database so a login survives restarts.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
