package credentials

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeParameterGetter struct {
	values map[string]string
	err    error
	names  []string
}

func (f *fakeParameterGetter) GetParameter(_ context.Context, params *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	name := aws.ToString(params.Name)
	f.names = append(f.names, name)
	if f.err != nil {
		return nil, f.err
	}
	value, ok := f.values[name]
	if !ok {
		return nil, &types.ParameterNotFound{Message: aws.String("not found")}
	}
	return &ssm.GetParameterOutput{
		Parameter: &types.Parameter{Name: params.Name, Value: aws.String(value)},
	}, nil
}

func TestParameterName(t *testing.T) {
	if got := ParameterName("web", "sshPrivateKeyPath"); got != "/web/sshPrivateKeyPath" {
		t.Errorf("ParameterName() = %q, want %q", got, "/web/sshPrivateKeyPath")
	}
}

func TestSSMResolver(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	getter := &fakeParameterGetter{values: map[string]string{
		"/web/sshPrivateKeyPath":   "~/.ssh/web.pem",
		"/db/sshPrivateKeyPath":    "/keys/db.pem",
		"/empty/sshPrivateKeyPath": "",
	}}

	tests := []struct {
		name          string
		service       string
		variable      string
		expected      string
		notConfigured bool
	}{
		{"home relative value", "web", "sshPrivateKeyPath", filepath.Join(home, ".ssh/web.pem"), false},
		{"absolute value", "db", "sshPrivateKeyPath", "/keys/db.pem", false},
		{"missing parameter", "cache", "sshPrivateKeyPath", "", true},
		{"empty parameter", "empty", "sshPrivateKeyPath", "", true},
		{"missing service", "", "sshPrivateKeyPath", "", true},
		{"missing variable", "web", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSSMResolver(getter, tt.service, tt.variable)
			got, err := r.Resolve(context.Background(), "/ignored/explicit/path")
			if tt.notConfigured {
				if !errors.Is(err, ErrNotConfigured) {
					t.Errorf("Resolve() error = %v, want ErrNotConfigured", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Resolve() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSSMResolver_TransportError(t *testing.T) {
	boom := errors.New("throttled")
	r := NewSSMResolver(&fakeParameterGetter{err: boom}, "web", "sshPrivateKeyPath")

	_, err := r.Resolve(context.Background(), "")
	if !errors.Is(err, boom) {
		t.Errorf("Resolve() error = %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, ErrNotConfigured) {
		t.Error("transport errors must not be reported as missing configuration")
	}
}
