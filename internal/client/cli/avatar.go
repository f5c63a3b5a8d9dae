package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mnln/accounts/internal/client/services"
	"github.com/mnln/accounts/internal/imgformat"
)

// UploadAvatar sends the image at path as the avatar of the logged-in user.
func (a *App) UploadAvatar(ctx context.Context, path string) error {
	if path == "" {
		fmt.Fprintln(a.out, "Usage: avatar <file>")
		return nil
	}
	if _, ok := imgformat.Infer(path); !ok {
		fmt.Fprintf(a.out, "Unsupported image format, expected one of %s\n", imgformat.AcceptString())
		return nil
	}

	url, err := a.auth.UploadAvatar(ctx, path)
	if err != nil {
		if errors.Is(err, services.ErrSessionExpired) {
			a.userName = ""
		}
		fmt.Fprintf(a.out, "Upload failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Avatar uploaded: %s\n", url)
	return nil
}

// Show prints the profile page data of the logged-in user.
func (a *App) Show(ctx context.Context) error {
	data, err := a.auth.Profile(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User:     %s\n", data.UserName)
	for _, row := range []struct {
		label string
		value *string
	}{
		{"Email:    ", data.Email},
		{"Avatar:   ", data.AvatarURL},
		{"chess.com:", data.ChessDotComProfile},
		{"lichess:  ", data.LichessProfile},
	} {
		if row.value != nil {
			fmt.Fprintf(&b, "%s %s\n", row.label, *row.value)
		}
	}
	fmt.Fprint(a.out, b.String())
	return nil
}
