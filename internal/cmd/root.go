package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/sshdeploy/internal/logger"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	verbose bool
	cfgFile string
	yesFlag bool // CI/CD: never prompt
)

var rootCmd = &cobra.Command{
	Use:   "sshdeploy",
	Short: "Run shells, uploads and deployment scripts over ssh",
	Long: `sshdeploy drives the system ssh client against configured servers.
Keys are resolved from a path or from AWS SSM and added to ssh-agent
before ssh is started.

Quick start:
  sshdeploy server add prod deploy@my-vps.com --key ~/.ssh/id_ed25519
  sshdeploy shell prod --path /srv/app
  sshdeploy deploy prod --var PORT=8080

Commands:
  init          Create a starter sshdeploy.yaml
  server        Configure servers
  shell         Open a login shell on a server
  upload        Copy a local file to a server
  deploy        Apply sshdeploy.yaml to one or more servers
  call          Run an existing remote script

Environment Variables:
  SSHDEPLOY_SERVER       Default server name
  SSHDEPLOY_SSH_BINARY   ssh binary to run (default: ssh)
  SSH_AUTH_SOCK          ssh-agent socket`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		log := logger.New(os.Stderr, IsVerbose())
		cmd.SetContext(logger.NewContext(cmd.Context(), log))
	},
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		PrintError("%v", err)
	}
	return err
}

// GetRootCmd returns the root command, for documentation generation
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed logs")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Package config file (default: sshdeploy.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Never prompt (CI/CD mode)")

	rootCmd.SetVersionTemplate(`sshdeploy {{.Version}}
`)
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// IsYesMode returns true if --yes flag is set (CI/CD mode)
func IsYesMode() bool {
	return yesFlag
}

// PrintError prints a formatted error message
func PrintError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "❌ "+msg+"\n", args...)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	fmt.Printf("✅ "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	fmt.Printf("ℹ️  "+msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	fmt.Printf("⚠️  "+msg+"\n", args...)
}

// PrintVerbose prints a message only in verbose mode
func PrintVerbose(msg string, args ...interface{}) {
	if IsVerbose() {
		fmt.Printf("   "+msg+"\n", args...)
	}
}
