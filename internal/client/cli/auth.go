package cli

import (
	"context"
	"fmt"

	"github.com/mnln/accounts/internal/client/services"
	"github.com/mnln/accounts/internal/cryptox"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Register prompts for the account fields and creates the account.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.WipeByteArray(password)

	var p services.Profile
	for _, f := range []struct {
		prompt string
		dst    **string
	}{
		{"Email (optional)", &p.Email},
		{"chess.com user name (optional)", &p.ChessDotComUsername},
		{"lichess user name (optional)", &p.LichessUsername},
	} {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = optional(v)
	}

	fmt.Fprintln(a.out, "Hashing password, this may take a while...")
	id, err := a.auth.Register(ctx, userName, password, p)
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Registered user %s (id %d)\n", userName, id)
	return nil
}

// Login prompts for credentials and stores the session on success.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.WipeByteArray(password)

	sess, err := a.auth.Login(ctx, userName, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		return err
	}

	a.userName = sess.UserName
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout forgets the stored session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	return nil
}
