package ssh

import (
	"fmt"

	"github.com/yoanbernabeu/sshdeploy/internal/constants"
)

// The remote command in ShellArgs and UploadArgs is a shell fragment run by
// the remote login shell. Paths are embedded as given and must be trusted.

// UserHost formats the ssh destination.
func UserHost(user, host string) string {
	return user + "@" + host
}

// ShellArgs builds the argv for an interactive login shell started in initialPath.
func ShellArgs(user, host, keyPath, initialPath string) []string {
	remote := constants.LoginShell
	if initialPath != "" {
		remote = fmt.Sprintf(`cd "%s"; %s`, initialPath, constants.LoginShell)
	}
	return append(constants.BaseOptions(keyPath),
		UserHost(user, host),
		"-t", "-t",
		remote,
	)
}

// UploadArgs builds the argv writing ssh's stdin to targetPath on the host.
func UploadArgs(user, host, keyPath, targetPath string) []string {
	return append(constants.BaseOptions(keyPath),
		UserHost(user, host),
		"cat > "+targetPath,
	)
}

// RunArgs builds the argv running binName with scriptPath on the host.
// Batch mode and a forced tty make the remote process die with the connection.
func RunArgs(user, host, keyPath, binName, scriptPath string) []string {
	return append(constants.BaseOptions(keyPath),
		"-o", constants.OptBatchMode,
		"-t", "-t",
		UserHost(user, host),
		binName, scriptPath,
	)
}
