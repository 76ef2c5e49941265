package deploy

import "fmt"

// Phase represents a step of a deployment to one server.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseUploadFiles
	PhaseRunScript
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseUploadFiles:
		return "upload-files"
	case PhaseRunScript:
		return "run-script"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// PhaseError reports the server and phase a deployment stopped in.
type PhaseError struct {
	Server string
	Phase  Phase
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Server, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
