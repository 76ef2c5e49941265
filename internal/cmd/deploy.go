package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/sshdeploy/internal/config"
	"github.com/yoanbernabeu/sshdeploy/internal/constants"
	"github.com/yoanbernabeu/sshdeploy/internal/deploy"
	"github.com/yoanbernabeu/sshdeploy/internal/logger"
	"github.com/yoanbernabeu/sshdeploy/internal/ssh"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [server...]",
	Short: "Apply sshdeploy.yaml to one or more servers",
	Long: `Uploads the files listed in sshdeploy.yaml, then uploads the script
with its %KEY% variables substituted and runs it.

Servers are deployed concurrently. With more than one server every output
line is prefixed with the server name. A failure on one server does not
stop the others.

Examples:
  sshdeploy deploy production
  sshdeploy deploy web1 web2 --var PORT=8080
  sshdeploy deploy production --var-file .env.production`,
	RunE: runDeploy,
}

var (
	deployVars     []string
	deployVarFiles []string
)

func init() {
	rootCmd.AddCommand(deployCmd)
	deployCmd.Flags().StringArrayVar(&deployVars, "var", nil, "Script variable KEY=VALUE (repeatable)")
	deployCmd.Flags().StringArrayVar(&deployVarFiles, "var-file", nil, "Dotenv file of script variables (repeatable, --var wins)")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	names, err := serverNames(args)
	if err != nil {
		return err
	}

	overrides, err := collectVars(deployVarFiles, deployVars)
	if err != nil {
		return err
	}

	cfgPath, err := projectConfigPath()
	if err != nil {
		return err
	}
	projectCfg, err := config.LoadProjectConfig(cfgPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(cfgPath)

	plan, err := deploy.NewPlan(projectCfg, dir, overrides)
	if err != nil {
		return err
	}

	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load global config: %w", err)
	}

	loader, closeAgent, err := openAgent()
	if err != nil {
		return err
	}
	defer closeAgent()

	var outMu sync.Mutex
	prefixed := len(names) > 1
	jobs := make([]deploy.Job, 0, len(names))
	servers := make(map[string]*config.ServerConfig, len(names))

	for _, name := range names {
		serverCfg, err := globalCfg.GetServer(name)
		if err != nil {
			return err
		}
		servers[name] = serverCfg

		var opts []ssh.Option
		var done func()
		if prefixed {
			runner, flush := prefixedRunner(name, dir, &outMu)
			opts = append(opts, ssh.WithRunner(runner))
			done = flush
		}

		exec, err := newExecutor(ctx, name, serverCfg, loader, dir, opts...)
		if err != nil {
			return err
		}

		jobs = append(jobs, deploy.Job{
			Target: jobTarget(name, serverCfg, globalCfg, plan.Bin),
			Exec:   exec,
			Done:   done,
		})
	}

	PrintInfo("Deploying %s to %d server(s)...", displayName(projectCfg, dir), len(jobs))

	err = deploy.RunAll(ctx, jobs, plan, logger.FromContext(ctx), func(server, msg string) {
		PrintVerbose("[%s] %s", server, msg)
	})
	if err != nil {
		for _, name := range names {
			if e := serverError(err, name); e != nil {
				PrintError("%v", e)
				printHint(servers[name], e)
			}
		}
		return fmt.Errorf("deployment failed")
	}

	PrintSuccess("Deployed to %d server(s)", len(jobs))
	return nil
}

// jobTarget describes one server of a deployment. The script binary is
// resolved per server: script.bin, then the server's bin, then default_bin.
func jobTarget(name string, serverCfg *config.ServerConfig, globalCfg *config.GlobalConfig, scriptBin string) deploy.Target {
	return deploy.Target{
		Name:    name,
		Host:    serverCfg.Host,
		User:    serverCfg.User,
		KeyPath: serverCfg.KeyPath,
		Bin:     globalCfg.ResolveBin(scriptBin, serverCfg),
	}
}

// prefixedRunner returns a runner whose output lines carry "[name] ", and
// a func flushing any trailing partial line.
func prefixedRunner(name, dir string, mu *sync.Mutex) (*ssh.ProcessRunner, func()) {
	stdout := deploy.NewPrefixWriter(os.Stdout, "["+name+"] ", mu)
	stderr := deploy.NewPrefixWriter(os.Stderr, "["+name+"] ", mu)

	runner := ssh.NewProcessRunner(os.Getenv(constants.EnvSSHBinary), dir)
	runner.Stdout = stdout
	runner.Stderr = stderr

	return runner, func() {
		_ = stdout.Flush()
		_ = stderr.Flush()
	}
}

// serverError returns the PhaseError of server inside a joined error, if any.
func serverError(err error, server string) error {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	for _, e := range errs {
		if pe, ok := e.(*deploy.PhaseError); ok && pe.Server == server {
			return pe
		}
	}
	return nil
}

func displayName(cfg *config.ProjectConfig, dir string) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return filepath.Base(dir)
}
