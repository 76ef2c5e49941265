package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotConfigured is returned when no private key path can be determined.
var ErrNotConfigured = errors.New("private key path is not configured")

// Resolver turns key configuration into a private key path usable by ssh.
type Resolver interface {
	Resolve(ctx context.Context, explicitPath string) (string, error)
}

// PathResolver resolves the key from the path given with the request.
type PathResolver struct{}

// Resolve expands explicitPath, failing when it is empty.
func (PathResolver) Resolve(_ context.Context, explicitPath string) (string, error) {
	if explicitPath == "" {
		return "", fmt.Errorf("%w: key_path is required", ErrNotConfigured)
	}
	return ExpandHome(explicitPath)
}

// ExpandHome replaces a leading "~/" with the current user's home directory.
// Any other path is returned unchanged.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}
