package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2instanceconnect"
	"golang.org/x/crypto/ssh"
)

// KeyPublisher is the subset of the EC2 Instance Connect client used to push
// public keys.
type KeyPublisher interface {
	SendSSHPublicKey(ctx context.Context, params *ec2instanceconnect.SendSSHPublicKeyInput, optFns ...func(*ec2instanceconnect.Options)) (*ec2instanceconnect.SendSSHPublicKeyOutput, error)
}

// InstanceConnectLoader runs another loader, then pushes the key's public
// half to an EC2 instance. The instance accepts a pushed key for 60 seconds,
// so it is sent again before every ssh invocation.
type InstanceConnectLoader struct {
	next       Loader
	client     KeyPublisher
	InstanceID string
	OSUser     string
}

// NewInstanceConnectLoader wraps next. next may be nil.
func NewInstanceConnectLoader(next Loader, client KeyPublisher, instanceID, osUser string) *InstanceConnectLoader {
	return &InstanceConnectLoader{
		next:       next,
		client:     client,
		InstanceID: instanceID,
		OSUser:     osUser,
	}
}

// NewInstanceConnectLoaderFromEnv builds the client from the default AWS
// configuration. An empty region keeps the region from the environment.
func NewInstanceConnectLoaderFromEnv(ctx context.Context, next Loader, region, instanceID, osUser string) (*InstanceConnectLoader, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewInstanceConnectLoader(next, ec2instanceconnect.NewFromConfig(awsCfg), instanceID, osUser), nil
}

// EnsureLoaded loads the key with the wrapped loader and publishes it.
func (l *InstanceConnectLoader) EnsureLoaded(ctx context.Context, keyPath string) error {
	if l.InstanceID == "" || l.OSUser == "" {
		return fmt.Errorf("%w: instance connect needs an instance id and a user", ErrNotConfigured)
	}

	if l.next != nil {
		if err := l.next.EnsureLoaded(ctx, keyPath); err != nil {
			return err
		}
	}

	pub, err := PublicKey(keyPath)
	if err != nil {
		return err
	}

	out, err := l.client.SendSSHPublicKey(ctx, &ec2instanceconnect.SendSSHPublicKeyInput{
		InstanceId:     aws.String(l.InstanceID),
		InstanceOSUser: aws.String(l.OSUser),
		SSHPublicKey:   aws.String(string(ssh.MarshalAuthorizedKey(pub))),
	})
	if err != nil {
		return fmt.Errorf("adding ssh key via instance connect: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("instance connect rejected the key for %s", l.InstanceID)
	}
	return nil
}

// PublicKey returns the public key of the private key at keyPath, read from
// keyPath.pub when present. Encrypted OpenSSH keys carry their public key in
// clear, so no passphrase is needed.
func PublicKey(keyPath string) (ssh.PublicKey, error) {
	if data, err := os.ReadFile(keyPath + ".pub"); err == nil {
		if pub, _, _, _, err := ssh.ParseAuthorizedKey(data); err == nil {
			return pub, nil
		}
	}

	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err == nil {
		return signer.PublicKey(), nil
	}

	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) && missing.PublicKey != nil {
		return missing.PublicKey, nil
	}
	if errors.As(err, &missing) {
		return nil, fmt.Errorf("%w: %s (add %s.pub)", ErrPassphraseRequired, keyPath, keyPath)
	}
	return nil, fmt.Errorf("failed to parse private key %s: %w", keyPath, err)
}
