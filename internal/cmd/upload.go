package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/sshdeploy/internal/security"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <server> <local-file> <remote-path>",
	Short: "Copy a local file to a server",
	Long: `Streams a local file to a remote path over ssh.

Example:
  sshdeploy upload production dist/app.tar.gz /srv/app.tar.gz`,
	Args: cobra.ExactArgs(3),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	name, local, remote := args[0], args[1], args[2]

	if err := security.ValidateRemotePath(remote); err != nil {
		return fmt.Errorf("invalid remote path: %w", err)
	}

	_, serverCfg, err := loadServer(name)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(local)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", local, err)
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
	req.TargetPath = remote
	req.Payload = data
	if err := exec.Deploy(cmd.Context(), req); err != nil {
		printHint(serverCfg, err)
		return fmt.Errorf("upload failed: %w", err)
	}

	PrintSuccess("Uploaded %s to %s:%s (%d bytes)", local, name, remote, len(data))
	return nil
}
