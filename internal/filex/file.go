// Package filex holds small filesystem helpers for the client.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppDirName is the per-user directory the client keeps its data in.
const AppDirName = "mnln"

// DataPath returns name inside the user's config directory, or name itself
// when the platform reports no such directory.
func DataPath(name string) string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return name
	}
	return filepath.Join(base, AppDirName, name)
}

// EnsureParentDir creates the directory holding path, readable only by the
// current user.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
