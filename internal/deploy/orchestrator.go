package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/yoanbernabeu/sshdeploy/internal/ssh"
	"go.uber.org/zap"
)

// Executor is the part of the ssh executor a deployment needs.
type Executor interface {
	Deploy(ctx context.Context, req *ssh.Request) error
}

// Orchestrator handles the deployment workflow for one server
type Orchestrator struct {
	exec      Executor
	target    Target
	log       *zap.Logger
	phase     Phase
	onMessage func(string)
}

// NewOrchestrator creates a new deployment orchestrator
func NewOrchestrator(exec Executor, target Target, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		exec:   exec,
		target: target,
		log:    log.With(zap.String("server", target.Name)),
		phase:  PhaseInit,
	}
}

// OnMessage sets a callback for status messages
func (o *Orchestrator) OnMessage(fn func(string)) {
	o.onMessage = fn
}

// Phase returns the phase the orchestrator reached.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

func (o *Orchestrator) message(msg string) {
	if o.onMessage != nil {
		o.onMessage(msg)
	}
}

// Deploy applies plan: uploads first, in order, then the script. The first
// failure stops the run and is returned as *PhaseError.
func (o *Orchestrator) Deploy(ctx context.Context, plan *Plan) error {
	if len(plan.Uploads) > 0 {
		o.enter(PhaseUploadFiles)
		for _, u := range plan.Uploads {
			o.message(fmt.Sprintf("Uploading %s to %s...", u.Source, u.Target))
			if err := o.upload(ctx, u); err != nil {
				return o.fail(err)
			}
		}
	}

	if plan.ScriptPath != "" {
		o.enter(PhaseRunScript)
		o.message(fmt.Sprintf("Running %s...", plan.ScriptPath))
		req := o.request()
		req.ScriptPath = plan.ScriptPath
		req.ScriptVars = plan.Vars
		req.BinName = plan.Bin
		if o.target.Bin != "" {
			req.BinName = o.target.Bin
		}
		if err := o.exec.Deploy(ctx, req); err != nil {
			return o.fail(err)
		}
	}

	o.enter(PhaseDone)
	return nil
}

func (o *Orchestrator) upload(ctx context.Context, u Upload) error {
	data, err := os.ReadFile(u.Source)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", u.Source, err)
	}
	req := o.request()
	req.TargetPath = u.Target
	req.Payload = data
	return o.exec.Deploy(ctx, req)
}

func (o *Orchestrator) request() *ssh.Request {
	return &ssh.Request{
		Hostname:       o.target.Host,
		Username:       o.target.User,
		PrivateKeyPath: o.target.KeyPath,
	}
}

func (o *Orchestrator) enter(p Phase) {
	o.phase = p
	o.log.Debug("Entering phase", zap.Stringer("phase", p))
}

func (o *Orchestrator) fail(err error) error {
	o.log.Error("Deployment failed", zap.Stringer("phase", o.phase), zap.Error(err))
	return &PhaseError{Server: o.target.Name, Phase: o.phase, Err: err}
}

// Job pairs a target with the executor that reaches it.
type Job struct {
	Target Target
	Exec   Executor
	// Done runs after the deployment finishes, successful or not.
	Done func()
}

// RunAll deploys plan to every job concurrently. Servers are independent: a
// failure on one does not stop the others, and every failure is returned.
func RunAll(ctx context.Context, jobs []Job, plan *Plan, log *zap.Logger, onMessage func(server, msg string)) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("deployment", uuid.NewString()))
	log.Info("Starting deployment", zap.Int("servers", len(jobs)))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, job := range jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			if job.Done != nil {
				defer job.Done()
			}

			o := NewOrchestrator(job.Exec, job.Target, log)
			if onMessage != nil {
				o.OnMessage(func(msg string) { onMessage(job.Target.Name, msg) })
			}
			if err := o.Deploy(ctx, plan); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(job)
	}

	wg.Wait()
	log.Info("Deployment finished", zap.Int("servers", len(jobs)), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}
