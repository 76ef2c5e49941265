package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/sshdeploy/internal/config"
	"github.com/yoanbernabeu/sshdeploy/internal/constants"
	"github.com/yoanbernabeu/sshdeploy/internal/credentials"
	"github.com/yoanbernabeu/sshdeploy/internal/security"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage servers",
	Long:  `Commands to add, list, and remove servers.`,
}

var serverAddCmd = &cobra.Command{
	Use:   "add <name> <user@host>",
	Short: "Add a new server",
	Long: `Adds a new server to the global configuration.

The private key is either a path (--key) or looked up in AWS SSM
Parameter Store under /<service>/<variable> at every call. Without
either, keys found in ~/.ssh are offered. With --ec2-instance-id the
public key is pushed through EC2 Instance Connect before every call.

Example:
  sshdeploy server add production deploy@my-vps.com --key ~/.ssh/id_ed25519
  sshdeploy server add staging deploy@10.0.0.2 --aws-service web --aws-variable ssh_key --path /srv/app
  sshdeploy server add ec2 ec2-user@10.0.0.3 --key ~/.ssh/id_ed25519 --ec2-instance-id i-0123456789abcdef0`,
	Args: cobra.ExactArgs(2),
	RunE: runServerAdd,
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured servers",
	RunE:  runServerList,
}

var serverRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a server",
	Args:  cobra.ExactArgs(1),
	RunE:  runServerRemove,
}

var (
	serverKeyPath     string
	serverAWSService  string
	serverAWSVariable string
	serverAWSRegion   string
	serverInstanceID  string
	serverInitialPath string
	serverBin         string
)

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.AddCommand(serverAddCmd)
	serverCmd.AddCommand(serverListCmd)
	serverCmd.AddCommand(serverRemoveCmd)

	serverAddCmd.Flags().StringVarP(&serverKeyPath, "key", "k", "", "SSH private key path")
	serverAddCmd.Flags().StringVar(&serverAWSService, "aws-service", "", "SSM service segment of the key path parameter")
	serverAddCmd.Flags().StringVar(&serverAWSVariable, "aws-variable", "", "SSM variable segment of the key path parameter")
	serverAddCmd.Flags().StringVar(&serverAWSRegion, "aws-region", "", "AWS region for SSM and Instance Connect (default: from the AWS config)")
	serverAddCmd.Flags().StringVar(&serverInstanceID, "ec2-instance-id", "", "Push the key with EC2 Instance Connect before each call")
	serverAddCmd.Flags().StringVar(&serverInitialPath, "path", "", "Remote directory shells start in")
	serverAddCmd.Flags().StringVar(&serverBin, "bin", "", "Remote interpreter for scripts")
	serverAddCmd.MarkFlagsMutuallyExclusive("key", "aws-service")
	serverAddCmd.MarkFlagsRequiredTogether("aws-service", "aws-variable")
}

func runServerAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	if err := security.ValidateServerName(name); err != nil {
		return fmt.Errorf("invalid server name: %w", err)
	}

	user, host, err := parseHostSpec(args[1])
	if err != nil {
		return err
	}

	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load global config: %w", err)
	}

	serverCfg := config.ServerConfig{
		Host:        host,
		User:        user,
		KeyPath:     serverKeyPath,
		InitialPath: serverInitialPath,
		Bin:         serverBin,
	}

	if serverInstanceID != "" {
		serverCfg.InstanceConnect = &config.InstanceConnectConfig{
			InstanceID: serverInstanceID,
			Region:     serverAWSRegion,
		}
	}

	if serverAWSService != "" {
		serverCfg.KeySource = &config.KeySourceConfig{
			Provider: constants.ProviderAWS,
			Region:   serverAWSRegion,
			Service:  serverAWSService,
			Variable: serverAWSVariable,
		}
	} else if serverCfg.KeyPath == "" {
		serverCfg.KeyPath = selectKey()
		if serverCfg.KeyPath == "" {
			return fmt.Errorf("no key selected: pass --key or --aws-service/--aws-variable")
		}
	}

	if err := globalCfg.AddServer(name, serverCfg); err != nil {
		return err
	}

	if err := config.SaveGlobalConfig(globalCfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	added := globalCfg.Servers[name]
	PrintSuccess("Added server '%s' (%s@%s)", name, added.User, added.Host)
	return nil
}

// parseHostSpec splits user@host. The user part may be empty, in which case
// the global default user applies.
func parseHostSpec(spec string) (string, string, error) {
	user, host, ok := strings.Cut(spec, "@")
	if !ok {
		return "", "", fmt.Errorf("invalid host format, use user@host")
	}
	if host == "" {
		return "", "", fmt.Errorf("invalid host format, host is empty")
	}
	return user, host, nil
}

// selectKey offers the keys found in ~/.ssh and returns the chosen path.
func selectKey() string {
	keys, err := credentials.DiscoverSSHKeys()
	if err != nil || len(keys) == 0 {
		return ""
	}

	if !IsInteractive() {
		PrintInfo("Using %s", keys[0].Path)
		return keys[0].Path
	}

	options := make([]string, len(keys))
	for i, k := range keys {
		label := fmt.Sprintf("%s (%s)", k.Name, k.Type)
		if k.IsEncrypted {
			label += " [passphrase]"
		}
		options[i] = label
	}

	idx := PromptSelect("Select the SSH key for this server:", options)
	if idx < 0 {
		return ""
	}
	return keys[idx].Path
}

func runServerList(cmd *cobra.Command, args []string) error {
	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load global config: %w", err)
	}

	names := globalCfg.ListServers()
	if len(names) == 0 {
		PrintInfo("No servers configured. Add one with 'sshdeploy server add'")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHOST\tKEY\tPATH")
	for _, name := range names {
		s := globalCfg.Servers[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, s.User+"@"+s.Host, keyDescription(&s), s.InitialPath)
	}
	return w.Flush()
}

func keyDescription(s *config.ServerConfig) string {
	if s.KeySource != nil {
		return fmt.Sprintf("%s:%s", s.KeySource.Provider, credentials.ParameterName(s.KeySource.Service, s.KeySource.Variable))
	}
	return s.KeyPath
}

func runServerRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load global config: %w", err)
	}

	if err := globalCfg.RemoveServer(name); err != nil {
		return err
	}

	if err := config.SaveGlobalConfig(globalCfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	PrintSuccess("Removed server '%s'", name)
	return nil
}
