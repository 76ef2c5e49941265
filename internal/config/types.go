package config

import "github.com/yoanbernabeu/sshdeploy/internal/constants"

// ProjectConfig represents the sshdeploy.yaml package configuration
type ProjectConfig struct {
	Name    string         `yaml:"name"`
	Uploads []UploadConfig `yaml:"uploads,omitempty"`
	Script  ScriptConfig   `yaml:"script,omitempty"`
}

// UploadConfig copies a local file to a remote path before the script runs
type UploadConfig struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// ScriptConfig holds the deployment script and its %KEY% variables.
// Vars override the values read from EnvFile.
type ScriptConfig struct {
	Path    string            `yaml:"path,omitempty"`
	Bin     string            `yaml:"bin,omitempty"`
	EnvFile string            `yaml:"env_file,omitempty"`
	Vars    map[string]string `yaml:"vars,omitempty"`
}

// GlobalConfig represents the global ~/.config/sshdeploy/config.yaml
type GlobalConfig struct {
	Servers     map[string]ServerConfig `yaml:"servers"`
	DefaultUser string                  `yaml:"default_user,omitempty"`
	DefaultBin  string                  `yaml:"default_bin,omitempty"`
}

// ServerConfig represents a configured server
type ServerConfig struct {
	Name        string           `yaml:"name,omitempty"`
	Host        string           `yaml:"host"`
	User        string           `yaml:"user"`
	KeyPath     string           `yaml:"key_path,omitempty"`
	KeySource   *KeySourceConfig `yaml:"key_source,omitempty"`
	InitialPath string           `yaml:"initial_path,omitempty"`
	Bin         string           `yaml:"bin,omitempty"`

	InstanceConnect *InstanceConnectConfig `yaml:"instance_connect,omitempty"`
}

// InstanceConnectConfig pushes the key to an EC2 instance before each call
type InstanceConnectConfig struct {
	InstanceID string `yaml:"instance_id"`
	Region     string `yaml:"region,omitempty"`
}

// KeySourceConfig locates the private key path in an external parameter store
type KeySourceConfig struct {
	Provider string `yaml:"provider"`
	Region   string `yaml:"region,omitempty"`
	Service  string `yaml:"service"`
	Variable string `yaml:"variable"`
}

// DefaultGlobalConfig returns a default global configuration
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Servers:     make(map[string]ServerConfig),
		DefaultUser: "deploy",
		DefaultBin:  constants.DefaultRemoteBin,
	}
}

// ResolveBin picks the remote binary: explicit value, then server, then
// global default, then bash.
func (c *GlobalConfig) ResolveBin(explicit string, server *ServerConfig) string {
	switch {
	case explicit != "":
		return explicit
	case server != nil && server.Bin != "":
		return server.Bin
	case c.DefaultBin != "":
		return c.DefaultBin
	default:
		return constants.DefaultRemoteBin
	}
}
