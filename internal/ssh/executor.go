package ssh

import (
	"context"
	"fmt"
	"strings"

	"github.com/yoanbernabeu/sshdeploy/internal/constants"
	"github.com/yoanbernabeu/sshdeploy/internal/credentials"
	"go.uber.org/zap"
)

// Request describes one remote operation against a host.
type Request struct {
	Hostname       string
	Username       string
	PrivateKeyPath string

	InitialPath string
	TargetPath  string
	Payload     []byte
	ScriptPath  string
	ScriptVars  map[string]string
	BinName     string
}

// Operation is the entry point a request was issued through.
type Operation int

const (
	OpShell Operation = iota
	OpDeploy
	OpCall
)

// Mode is what a request actually does on the host.
type Mode int

const (
	ModeUnsupported Mode = iota
	ModeShell
	ModeUploadData
	ModeUploadScript
	ModeRunBinary
)

func (m Mode) String() string {
	switch m {
	case ModeShell:
		return "shell"
	case ModeUploadData:
		return "upload-data"
	case ModeUploadScript:
		return "upload-script"
	case ModeRunBinary:
		return "run-binary"
	default:
		return "unsupported"
	}
}

// SelectMode picks the mode for a request from the fields it populates.
func SelectMode(op Operation, req *Request) Mode {
	switch op {
	case OpShell:
		return ModeShell
	case OpDeploy:
		if req.TargetPath != "" && req.Payload != nil {
			return ModeUploadData
		}
		if req.ScriptPath != "" {
			return ModeUploadScript
		}
	case OpCall:
		if req.ScriptPath != "" {
			return ModeRunBinary
		}
	}
	return ModeUnsupported
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(e *Executor) {
		e.runner = r
	}
}

// WithResolver replaces the key resolver (default: the request's key path).
func WithResolver(r credentials.Resolver) Option {
	return func(e *Executor) {
		e.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Executor) {
		e.log = log
	}
}

// WithBinary sets the ssh binary used by the default runner.
func WithBinary(binary string) Option {
	return func(e *Executor) {
		e.binary = binary
	}
}

// Executor runs remote operations by shelling out to ssh. It holds no
// per-call state and may be used concurrently.
type Executor struct {
	resolver credentials.Resolver
	loader   credentials.Loader
	runner   Runner
	binary   string
	dir      string
	log      *zap.Logger
}

// NewExecutor creates an executor spawning ssh in dir. Keys are made
// available through loader before any process starts.
func NewExecutor(dir string, loader credentials.Loader, opts ...Option) *Executor {
	e := &Executor{
		resolver: credentials.PathResolver{},
		loader:   loader,
		binary:   constants.DefaultBinary,
		dir:      dir,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = NewProcessRunner(e.binary, dir)
	}
	return e
}

// Shell opens an interactive login shell in req.InitialPath.
func (e *Executor) Shell(ctx context.Context, req *Request) error {
	return e.Execute(ctx, SelectMode(OpShell, req), req)
}

// Deploy uploads req.Payload to req.TargetPath, or uploads the script at
// req.ScriptPath and runs it.
func (e *Executor) Deploy(ctx context.Context, req *Request) error {
	return e.Execute(ctx, SelectMode(OpDeploy, req), req)
}

// Call runs req.BinName with req.ScriptPath on the host.
func (e *Executor) Call(ctx context.Context, req *Request) error {
	return e.Execute(ctx, SelectMode(OpCall, req), req)
}

// Execute runs req in the given mode. The key is resolved and loaded into the
// agent once; nothing is spawned if either step fails.
func (e *Executor) Execute(ctx context.Context, mode Mode, req *Request) error {
	if mode == ModeUnsupported {
		return fmt.Errorf("%w: request does not match any mode", ErrUnsupportedMode)
	}
	if req.Hostname == "" || req.Username == "" {
		return fmt.Errorf("%w: hostname and username are required", ErrConfiguration)
	}

	keyPath, err := e.prepareKey(ctx, req)
	if err != nil {
		return err
	}

	switch mode {
	case ModeShell:
		return e.run(ctx, Invocation{
			Args:        ShellArgs(req.Username, req.Hostname, keyPath, req.InitialPath),
			Interactive: true,
		})
	case ModeUploadData:
		return e.run(ctx, Invocation{
			Args:  UploadArgs(req.Username, req.Hostname, keyPath, req.TargetPath),
			Stdin: req.Payload,
		})
	case ModeUploadScript:
		return e.uploadScript(ctx, keyPath, req)
	case ModeRunBinary:
		return e.run(ctx, Invocation{
			Args: RunArgs(req.Username, req.Hostname, keyPath, binName(req), req.ScriptPath),
		})
	default:
		return fmt.Errorf("%w: mode %s", ErrUnsupportedMode, mode)
	}
}

func (e *Executor) prepareKey(ctx context.Context, req *Request) (string, error) {
	keyPath, err := e.resolver.Resolve(ctx, req.PrivateKeyPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve private key: %w", err)
	}
	if err := e.loader.EnsureLoaded(ctx, keyPath); err != nil {
		return "", fmt.Errorf("%w: %w", ErrAgent, err)
	}
	return keyPath, nil
}

// uploadScript writes the substituted script next to the remote home and
// runs it. A failed run leaves the uploaded script in place.
func (e *Executor) uploadScript(ctx context.Context, keyPath string, req *Request) error {
	script, err := LoadScript(req.ScriptPath, req.ScriptVars)
	if err != nil {
		return err
	}

	remote := RemoteScriptName(req.ScriptPath)
	if err := e.run(ctx, Invocation{
		Args:  UploadArgs(req.Username, req.Hostname, keyPath, remote),
		Stdin: []byte(script),
	}); err != nil {
		return err
	}

	// TODO: background the script (nohup, logs in ~) so it survives a dropped
	// connection and can be checked on reconnect.
	return e.run(ctx, Invocation{
		Args: RunArgs(req.Username, req.Hostname, keyPath, binName(req), remote),
	})
}

func (e *Executor) run(ctx context.Context, inv Invocation) error {
	e.log.Info("Running ssh",
		zap.String("command", e.binary+" "+strings.Join(inv.Args, " ")),
		zap.String("cwd", e.dir),
	)
	return e.runner.Run(ctx, inv)
}

func binName(req *Request) string {
	if req.BinName == "" {
		return constants.DefaultRemoteBin
	}
	return req.BinName
}
