package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/sshdeploy/internal/security"
)

var shellCmd = &cobra.Command{
	Use:   "shell [server]",
	Short: "Open a login shell on a server",
	Long: `Opens an interactive login shell on the server, starting in the
server's initial path (or --path).

The exit status of the remote shell is not reported as an error.

Example:
  sshdeploy shell production
  sshdeploy shell production --path /srv/app`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShell,
}

var shellPath string

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVarP(&shellPath, "path", "p", "", "Remote directory to start in")
}

func runShell(cmd *cobra.Command, args []string) error {
	names, err := serverNames(args)
	if err != nil {
		return err
	}

	_, serverCfg, err := loadServer(names[0])
	if err != nil {
		return err
	}

	path := serverCfg.InitialPath
	if shellPath != "" {
		path = shellPath
	}
	if path != "" {
		if err := security.ValidateRemotePath(path); err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	loader, closeAgent, err := openAgent()
	if err != nil {
		return err
	}
	defer closeAgent()

	dir, err := workDir()
	if err != nil {
		return err
	}

	exec, err := newExecutor(cmd.Context(), names[0], serverCfg, loader, dir)
	if err != nil {
		return err
	}

	PrintVerbose("Connecting to %s@%s...", serverCfg.User, serverCfg.Host)

	req := baseRequest(serverCfg)
	req.InitialPath = path
	if err := exec.Shell(cmd.Context(), req); err != nil {
		printHint(serverCfg, err)
		return err
	}
	return nil
}
