package security

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var (
	// appNameRegex validates package names (DNS-compatible)
	// Allows: lowercase letters, numbers, hyphens (not at start/end)
	// Length: 1-63 characters
	appNameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

	// serverNameRegex validates server configuration names
	// Allows: letters, numbers, underscores, hyphens
	// Length: 1-64 characters
	serverNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]{0,62}[a-zA-Z0-9])?$`)

	// unixUserRegex validates Unix usernames
	// Standard POSIX username rules
	// Length: 1-32 characters
	unixUserRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

	// hostLabelRegex validates one DNS label
	hostLabelRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

	// binNameRegex validates remote interpreter names or paths
	binNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_./+-]+$`)
)

// ValidateAppName validates a package name
func ValidateAppName(name string) error {
	if name == "" {
		return fmt.Errorf("app name cannot be empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("app name too long (max 63 characters)")
	}
	if !appNameRegex.MatchString(name) {
		return fmt.Errorf("app name must contain only lowercase letters, numbers, and hyphens (not at start/end)")
	}
	return nil
}

// ValidateServerName validates a server configuration name
func ValidateServerName(name string) error {
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("server name too long (max 64 characters)")
	}
	if !serverNameRegex.MatchString(name) {
		return fmt.Errorf("server name must contain only letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidateUnixUser validates a Unix username
func ValidateUnixUser(user string) error {
	if user == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(user) > 32 {
		return fmt.Errorf("username too long (max 32 characters)")
	}
	if !unixUserRegex.MatchString(user) {
		return fmt.Errorf("username must start with a lowercase letter or underscore, followed by lowercase letters, numbers, underscores, or hyphens")
	}
	return nil
}

// ValidateHostname accepts DNS names and IP addresses.
func ValidateHostname(host string) error {
	if host == "" {
		return fmt.Errorf("hostname cannot be empty")
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if len(host) > 253 {
		return fmt.Errorf("hostname too long (max 253 characters)")
	}
	for _, label := range strings.Split(strings.TrimSuffix(host, "."), ".") {
		if !hostLabelRegex.MatchString(label) {
			return fmt.Errorf("invalid hostname label %q", label)
		}
	}
	return nil
}

// ValidateScriptVarKey validates the KEY of a %KEY% script token. Any
// character is allowed except the token delimiter and line breaks.
func ValidateScriptVarKey(key string) error {
	if key == "" {
		return fmt.Errorf("script variable key cannot be empty")
	}
	if len(key) > 256 {
		return fmt.Errorf("script variable key too long (max 256 characters)")
	}
	if strings.ContainsAny(key, "%\n\r") {
		return fmt.Errorf("script variable key cannot contain %%, newlines or carriage returns")
	}
	return nil
}

// ValidateRemotePath validates a path that ends up inside a remote shell
// fragment such as `cd "<path>"` or `cat > <path>`. It rejects characters
// that would end the fragment; it does not make the path shell-safe.
func ValidateRemotePath(path string) error {
	if path == "" {
		return fmt.Errorf("remote path cannot be empty")
	}
	if len(path) > 4096 {
		return fmt.Errorf("remote path too long (max 4096 characters)")
	}
	if strings.ContainsAny(path, "\"\n\r\x00;&|`$") {
		return fmt.Errorf("remote path contains a forbidden character")
	}
	return nil
}

// ValidateBinName validates the remote binary used to run scripts.
func ValidateBinName(bin string) error {
	if bin == "" {
		return nil // Empty defaults to "bash"
	}
	if !binNameRegex.MatchString(bin) {
		return fmt.Errorf("binary name must contain only letters, numbers, and _ . / + -")
	}
	return nil
}
