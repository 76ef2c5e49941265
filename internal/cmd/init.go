package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/sshdeploy/internal/config"
	"github.com/yoanbernabeu/sshdeploy/internal/constants"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter sshdeploy.yaml",
	Long: `Writes an sshdeploy.yaml in the current directory (or at --config)
that runs a single deployment script. Edit it to add uploads and
script variables.

Examples:
  sshdeploy init
  sshdeploy init --name web --script scripts/deploy.sh --bin sh`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initName   string
	initScript string
	initBin    string
	initForce  bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initName, "name", "n", "", "Package name (default: directory name)")
	initCmd.Flags().StringVar(&initScript, "script", "deploy.sh", "Deployment script path")
	initCmd.Flags().StringVar(&initBin, "bin", "", "Remote binary running the script (default: server or global setting)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
}

func runInit(_ *cobra.Command, _ []string) error {
	path := GetConfigFile()
	if path == "" {
		path = constants.ProjectConfigFile
	}

	cfg := starterConfig(path, initName, initScript, initBin)
	if errs := config.ValidateProjectConfig(cfg); errs.HasErrors() {
		PrintWarning("Configuration has validation issues: %s", errs.Error())
	}

	if err := writeStarterConfig(cfg, path, initForce); err != nil {
		return err
	}

	PrintSuccess("Created %s", path)
	PrintInfo("Next: sshdeploy deploy <server>")
	return nil
}

// starterConfig names the package after the config's directory unless a
// name is given.
func starterConfig(path, name, script, bin string) *config.ProjectConfig {
	if name == "" {
		if abs, err := filepath.Abs(path); err == nil {
			name = filepath.Base(filepath.Dir(abs))
		}
	}
	return &config.ProjectConfig{
		Name:   name,
		Script: config.ScriptConfig{Path: script, Bin: bin},
	}
}

func writeStarterConfig(cfg *config.ProjectConfig, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveProjectConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
