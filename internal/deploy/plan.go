package deploy

import (
	"fmt"
	"maps"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/yoanbernabeu/sshdeploy/internal/config"
	"github.com/yoanbernabeu/sshdeploy/internal/security"
)

// Upload is one local file copied to a remote path.
type Upload struct {
	Source string
	Target string
}

// Plan is what gets applied to every server of a deployment.
type Plan struct {
	Uploads    []Upload
	ScriptPath string
	Bin        string
	Vars       map[string]string
}

// Target is a server a plan runs against. Bin, when set, is the remote
// binary resolved for this server and takes precedence over Plan.Bin.
type Target struct {
	Name    string
	Host    string
	User    string
	KeyPath string
	Bin     string
}

// NewPlan builds a plan from a package configuration. Relative sources are
// resolved against baseDir. Variables come from the env file, then the
// configured vars, then overrides, each replacing earlier keys.
func NewPlan(cfg *config.ProjectConfig, baseDir string, overrides map[string]string) (*Plan, error) {
	plan := &Plan{
		Bin:  cfg.Script.Bin,
		Vars: make(map[string]string, len(cfg.Script.Vars)+len(overrides)),
	}

	for _, u := range cfg.Uploads {
		if u.Source == "" || u.Target == "" {
			return nil, fmt.Errorf("upload needs both source and target (got %q -> %q)", u.Source, u.Target)
		}
		plan.Uploads = append(plan.Uploads, Upload{
			Source: resolve(baseDir, u.Source),
			Target: u.Target,
		})
	}

	if cfg.Script.Path != "" {
		plan.ScriptPath = resolve(baseDir, cfg.Script.Path)
	}

	if cfg.Script.EnvFile != "" {
		fileVars, err := godotenv.Read(resolve(baseDir, cfg.Script.EnvFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", cfg.Script.EnvFile, err)
		}
		maps.Copy(plan.Vars, fileVars)
	}
	maps.Copy(plan.Vars, cfg.Script.Vars)
	maps.Copy(plan.Vars, overrides)

	for key := range plan.Vars {
		if err := security.ValidateScriptVarKey(key); err != nil {
			return nil, fmt.Errorf("invalid script variable %q: %w", key, err)
		}
	}

	if len(plan.Uploads) == 0 && plan.ScriptPath == "" {
		return nil, fmt.Errorf("nothing to deploy: no uploads and no script")
	}

	return plan, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
