package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yoanbernabeu/sshdeploy/internal/config"
	"github.com/yoanbernabeu/sshdeploy/internal/constants"
	"github.com/yoanbernabeu/sshdeploy/internal/credentials"
	"github.com/yoanbernabeu/sshdeploy/internal/logger"
	"github.com/yoanbernabeu/sshdeploy/internal/security"
	"github.com/yoanbernabeu/sshdeploy/internal/ssh"
)

// serverNames returns the servers named on the command line, falling back
// to $SSHDEPLOY_SERVER.
func serverNames(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if name := os.Getenv(constants.EnvServer); name != "" {
		return []string{name}, nil
	}
	return nil, fmt.Errorf("no server given (pass one or set %s)", constants.EnvServer)
}

// loadServer validates the server name and returns it with the global config.
func loadServer(name string) (*config.GlobalConfig, *config.ServerConfig, error) {
	if err := security.ValidateServerName(name); err != nil {
		return nil, nil, fmt.Errorf("invalid server name: %w", err)
	}

	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load global config: %w", err)
	}

	serverCfg, err := globalCfg.GetServer(name)
	if err != nil {
		return nil, nil, err
	}
	return globalCfg, serverCfg, nil
}

// workDir returns the directory ssh is spawned in: the package config's
// directory if one is found, else the current directory.
func workDir() (string, error) {
	if path, err := projectConfigPath(); err == nil {
		return filepath.Dir(path), nil
	}
	return os.Getwd()
}

// projectConfigPath returns --config, or the nearest sshdeploy.yaml.
func projectConfigPath() (string, error) {
	if path := GetConfigFile(); path != "" {
		return filepath.Abs(path)
	}
	return config.FindProjectConfig("")
}

// newResolver picks the key resolver for a server.
func newResolver(ctx context.Context, server *config.ServerConfig) (credentials.Resolver, error) {
	src := server.KeySource
	if src == nil {
		return credentials.PathResolver{}, nil
	}
	if src.Provider != constants.ProviderAWS {
		return nil, fmt.Errorf("%w: unsupported key provider %q", ssh.ErrConfiguration, src.Provider)
	}
	resolver, err := credentials.NewSSMResolverFromEnv(ctx, src.Region, src.Service, src.Variable)
	if err != nil {
		return nil, err
	}
	return resolver, nil
}

// openAgent connects to ssh-agent. The returned func closes the connection.
func openAgent() (*credentials.AgentLoader, func(), error) {
	a, conn, err := credentials.DialAgent()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ssh.ErrAgent, err)
	}
	return credentials.NewAgentLoader(a, passphrasePrompt()), func() { _ = conn.Close() }, nil
}

// newExecutor builds the executor reaching server.
func newExecutor(ctx context.Context, name string, server *config.ServerConfig, loader credentials.Loader, dir string, opts ...ssh.Option) (*ssh.Executor, error) {
	resolver, err := newResolver(ctx, server)
	if err != nil {
		return nil, err
	}

	if ic := server.InstanceConnect; ic != nil {
		loader, err = credentials.NewInstanceConnectLoaderFromEnv(ctx, loader, ic.Region, ic.InstanceID, server.User)
		if err != nil {
			return nil, err
		}
	}

	all := []ssh.Option{
		ssh.WithResolver(resolver),
		ssh.WithLogger(logger.ForServer(ctx, name)),
	}
	if binary := os.Getenv(constants.EnvSSHBinary); binary != "" {
		all = append(all, ssh.WithBinary(binary))
	}
	all = append(all, opts...)

	return ssh.NewExecutor(dir, loader, all...), nil
}

// baseRequest fills the connection fields of a request.
func baseRequest(server *config.ServerConfig) *ssh.Request {
	return &ssh.Request{
		Hostname:       server.Host,
		Username:       server.User,
		PrivateKeyPath: server.KeyPath,
	}
}

// printHint prints a suggestion for classified ssh failures
func printHint(server *config.ServerConfig, err error) {
	switch {
	case errors.Is(err, ssh.ErrConnectionRefused):
		PrintInfo("Check that sshd is running on %s and reachable from here", server.Host)
	case errors.Is(err, credentials.ErrPassphraseRequired):
		PrintInfo("Add the key to ssh-agent first (ssh-add), or run without --yes to be prompted")
	case errors.Is(err, ssh.ErrConfiguration):
		PrintInfo("Check the key settings with 'sshdeploy server list'")
	case errors.Is(err, ssh.ErrSpawn):
		PrintInfo("Is the ssh client installed? Set %s to use another binary", constants.EnvSSHBinary)
	}
}
