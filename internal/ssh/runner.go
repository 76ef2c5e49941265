package ssh

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/yoanbernabeu/sshdeploy/internal/constants"
)

// Invocation is a single ssh process to run.
type Invocation struct {
	Args []string
	// Stdin is written to the process and then closed. Nil leaves stdin empty.
	Stdin []byte
	// Interactive attaches the caller's terminal and ignores the exit status.
	Interactive bool
}

// Runner runs ssh invocations.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ProcessRunner spawns the ssh binary as a child process.
//
// The child is not bound to ctx: there is no timeout, and a hung remote
// session blocks Run until ssh exits.
type ProcessRunner struct {
	Binary string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewProcessRunner returns a runner for the given binary using the process's
// standard streams. An empty binary selects "ssh".
func NewProcessRunner(binary, dir string) *ProcessRunner {
	if binary == "" {
		binary = constants.DefaultBinary
	}
	return &ProcessRunner{
		Binary: binary,
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts the process and waits for it. A non-zero exit is reported as
// *ExitError carrying the captured stderr; a failed start as *SpawnError.
func (r *ProcessRunner) Run(_ context.Context, inv Invocation) error {
	cmd := exec.Command(r.Binary, inv.Args...)
	cmd.Dir = r.Dir

	if inv.Interactive {
		cmd.Stdin = r.Stdin
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		if err := cmd.Start(); err != nil {
			return &SpawnError{Binary: r.Binary, Err: err}
		}
		var exitErr *exec.ExitError
		if err := cmd.Wait(); err != nil && !errors.As(err, &exitErr) {
			return err
		}
		return nil
	}

	var stderr bytes.Buffer
	stdout := &unescapeWriter{w: r.Stdout}
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(r.Stderr, &stderr)
	if inv.Stdin != nil {
		cmd.Stdin = bytes.NewReader(inv.Stdin)
	}

	if err := cmd.Start(); err != nil {
		return &SpawnError{Binary: r.Binary, Err: err}
	}

	err := cmd.Wait()
	if flushErr := stdout.Flush(); err == nil && flushErr != nil {
		return flushErr
	}
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	}
	return err
}

// unescapeWriter turns the two-character sequence `\n` into a newline.
// A trailing backslash is held back until the next write so sequences split
// across chunks are still recognised.
type unescapeWriter struct {
	w       io.Writer
	pending bool
}

var (
	escapedNewline = []byte(`\n`)
	newline        = []byte("\n")
)

func (u *unescapeWriter) Write(p []byte) (int, error) {
	buf := make([]byte, 0, len(p)+1)
	if u.pending {
		buf = append(buf, '\\')
		u.pending = false
	}
	buf = append(buf, p...)

	if n := len(buf); n > 0 && buf[n-1] == '\\' {
		u.pending = true
		buf = buf[:n-1]
	}

	if len(buf) > 0 {
		if _, err := u.w.Write(bytes.ReplaceAll(buf, escapedNewline, newline)); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Flush writes a held-back backslash.
func (u *unescapeWriter) Flush() error {
	if !u.pending {
		return nil
	}
	u.pending = false
	_, err := u.w.Write([]byte{'\\'})
	return err
}
