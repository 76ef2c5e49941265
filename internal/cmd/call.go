package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/sshdeploy/internal/security"
)

var callCmd = &cobra.Command{
	Use:   "call <server> <remote-script>",
	Short: "Run an existing remote script",
	Long: `Runs a script that is already on the server with the configured
interpreter (--bin, then the server's bin, then default_bin, then bash).

Example:
  sshdeploy call production deploy.sh
  sshdeploy call production tools/report.py --bin python3`,
	Args: cobra.ExactArgs(2),
	RunE: runCall,
}

var callBin string

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVarP(&callBin, "bin", "b", "", "Remote interpreter")
}

func runCall(cmd *cobra.Command, args []string) error {
	name, script := args[0], args[1]

	if err := security.ValidateRemotePath(script); err != nil {
		return fmt.Errorf("invalid script path: %w", err)
	}
	if err := security.ValidateBinName(callBin); err != nil {
		return fmt.Errorf("invalid bin: %w", err)
	}

	globalCfg, serverCfg, err := loadServer(name)
	if err != nil {
		return err
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

	exec, err := newExecutor(cmd.Context(), name, serverCfg, loader, dir)
	if err != nil {
		return err
	}

	req := baseRequest(serverCfg)
	req.ScriptPath = script
	req.BinName = globalCfg.ResolveBin(callBin, serverCfg)
	if err := exec.Call(cmd.Context(), req); err != nil {
		printHint(serverCfg, err)
		return err
	}
	return nil
}
