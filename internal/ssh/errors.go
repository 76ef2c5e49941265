package ssh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yoanbernabeu/sshdeploy/internal/constants"
	"github.com/yoanbernabeu/sshdeploy/internal/credentials"
)

// Failure kinds, matched with errors.Is.
var (
	ErrConfiguration     = credentials.ErrNotConfigured
	ErrAgent             = errors.New("failed to load key into ssh-agent")
	ErrSpawn             = errors.New("failed to start ssh")
	ErrConnectionRefused = errors.New("connection refused")
	ErrExecutionFailed   = errors.New("remote execution failed")
	ErrUnsupportedMode   = errors.New("not yet implemented")
)

// ExitError is returned when ssh exits with a non-zero status.
type ExitError struct {
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("ssh exited with status %d: %s", e.ExitCode, e.Stderr)
}

// Unwrap classifies the failure from the captured stderr.
func (e *ExitError) Unwrap() error {
	if e.ConnectionRefused() {
		return ErrConnectionRefused
	}
	return ErrExecutionFailed
}

// ConnectionRefused reports whether ssh could not reach the host.
func (e *ExitError) ConnectionRefused() bool {
	return strings.Contains(e.Stderr, constants.ConnectionRefusedPattern)
}

// SpawnError is returned when the ssh binary could not be started at all.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() []error {
	return []error{ErrSpawn, e.Err}
}
