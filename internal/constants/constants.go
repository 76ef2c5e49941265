package constants

// SSH client
const (
	DefaultBinary    = "ssh"
	DefaultRemoteBin = "bash"
	LoginShell       = "bash --login"

	// ConnectionRefusedPattern is matched against ssh's stderr after a failed exit.
	ConnectionRefusedPattern = "Connection refused"
)

// Options passed to every ssh invocation, in order.
const (
	OptStrictHostKeyChecking  = "StrictHostKeyChecking=no"
	OptUserKnownHostsFile     = "UserKnownHostsFile=/dev/null"
	OptPasswordAuthentication = "PasswordAuthentication=no"
	OptBatchMode              = "BatchMode=yes"
	optIdentityFilePrefix     = "IdentityFile="
)

// Configuration files
const (
	GlobalConfigDir   = "sshdeploy"
	GlobalConfigFile  = "config.yaml"
	ProjectConfigFile = "sshdeploy.yaml"
)

// Environment variables
const (
	EnvServer     = "SSHDEPLOY_SERVER"
	EnvSSHBinary  = "SSHDEPLOY_SSH_BINARY"
	EnvAuthSocket = "SSH_AUTH_SOCK"
)

// Key source providers
const (
	ProviderAWS = "aws"
)

// IdentityFileOption returns the -o value selecting the given private key.
func IdentityFileOption(keyPath string) string {
	return optIdentityFilePrefix + keyPath
}

// BaseOptions returns the fixed ssh options for the given key, as argv.
func BaseOptions(keyPath string) []string {
	return []string{
		"-o", OptStrictHostKeyChecking,
		"-o", OptUserKnownHostsFile,
		"-o", OptPasswordAuthentication,
		"-o", IdentityFileOption(keyPath),
	}
}
