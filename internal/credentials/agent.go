package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/yoanbernabeu/sshdeploy/internal/constants"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// ErrPassphraseRequired is returned for an encrypted key when no passphrase
// source is available.
var ErrPassphraseRequired = errors.New("private key is passphrase protected")

// Loader makes a private key available to ssh before it is spawned.
type Loader interface {
	EnsureLoaded(ctx context.Context, keyPath string) error
}

// PassphraseFunc returns the passphrase for an encrypted key.
type PassphraseFunc func(keyPath string) ([]byte, error)

// AgentLoader adds keys to an SSH agent unless the agent already holds them.
type AgentLoader struct {
	agent      agent.Agent
	passphrase PassphraseFunc

	mu sync.Mutex
}

// NewAgentLoader creates a loader for the given agent. passphrase may be nil,
// in which case encrypted keys fail with ErrPassphraseRequired.
func NewAgentLoader(a agent.Agent, passphrase PassphraseFunc) *AgentLoader {
	return &AgentLoader{
		agent:      a,
		passphrase: passphrase,
	}
}

// DialAgent connects to the agent listening on $SSH_AUTH_SOCK.
// The caller must close the returned connection.
func DialAgent() (agent.ExtendedAgent, io.Closer, error) {
	sock := os.Getenv(constants.EnvAuthSocket)
	if sock == "" {
		return nil, nil, fmt.Errorf("%s is not set (is ssh-agent running?)", constants.EnvAuthSocket)
	}

	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to ssh-agent: %w", err)
	}

	return agent.NewClient(conn), conn, nil
}

// EnsureLoaded adds the key at keyPath to the agent. Loading a key the agent
// already holds is a no-op and never asks for a passphrase.
func (l *AgentLoader) EnsureLoaded(_ context.Context, keyPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}

	key, err := ssh.ParseRawPrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if !errors.As(err, &missing) {
			return fmt.Errorf("failed to parse private key %s: %w", keyPath, err)
		}
		// Encrypted OpenSSH keys carry their public half in the clear.
		if missing.PublicKey != nil {
			held, err := l.holds(missing.PublicKey.Marshal())
			if err != nil || held {
				return err
			}
		}
		if key, err = l.decrypt(keyPath, data); err != nil {
			return err
		}
	}

	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		return fmt.Errorf("unsupported private key %s: %w", keyPath, err)
	}
	held, err := l.holds(signer.PublicKey().Marshal())
	if err != nil || held {
		return err
	}

	if err := l.agent.Add(agent.AddedKey{PrivateKey: key, Comment: keyPath}); err != nil {
		return fmt.Errorf("failed to add key to agent: %w", err)
	}
	return nil
}

// holds reports whether the agent already has the marshaled public key.
// Callers must hold l.mu.
func (l *AgentLoader) holds(want []byte) (bool, error) {
	loaded, err := l.agent.List()
	if err != nil {
		return false, fmt.Errorf("failed to list agent keys: %w", err)
	}
	for _, k := range loaded {
		if bytes.Equal(k.Marshal(), want) {
			return true, nil
		}
	}
	return false, nil
}

func (l *AgentLoader) decrypt(keyPath string, data []byte) (interface{}, error) {
	if l.passphrase == nil {
		return nil, fmt.Errorf("%w: %s", ErrPassphraseRequired, keyPath)
	}

	passphrase, err := l.passphrase(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	key, err := ssh.ParseRawPrivateKeyWithPassphrase(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt private key %s: %w", keyPath, err)
	}
	return key, nil
}
