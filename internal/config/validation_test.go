package config

import (
	"strings"
	"testing"
)

func TestValidateServerConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    ServerConfig
		wantField string
	}{
		{
			name:   "valid key path",
			config: ServerConfig{Host: "host.example", User: "dev", KeyPath: "~/.ssh/id_ed25519"},
		},
		{
			name: "valid key source",
			config: ServerConfig{Host: "10.0.0.1", User: "dev", KeySource: &KeySourceConfig{
				Provider: "aws", Service: "svc", Variable: "var",
			}},
		},
		{
			name:      "missing host",
			config:    ServerConfig{User: "dev", KeyPath: "/k"},
			wantField: "host",
		},
		{
			name:      "missing user",
			config:    ServerConfig{Host: "h", KeyPath: "/k"},
			wantField: "user",
		},
		{
			name:      "no key",
			config:    ServerConfig{Host: "h", User: "dev"},
			wantField: "key_path",
		},
		{
			name: "unknown provider",
			config: ServerConfig{Host: "h", User: "dev", KeySource: &KeySourceConfig{
				Provider: "vault", Service: "svc", Variable: "var",
			}},
			wantField: "key_source.provider",
		},
		{
			name: "incomplete key source",
			config: ServerConfig{Host: "h", User: "dev", KeySource: &KeySourceConfig{
				Provider: "aws", Service: "svc",
			}},
			wantField: "key_source",
		},
		{
			name: "valid instance connect",
			config: ServerConfig{Host: "h", User: "ec2-user", KeyPath: "/k", InstanceConnect: &InstanceConnectConfig{
				InstanceID: "i-0123456789abcdef0",
			}},
		},
		{
			name: "bad instance id",
			config: ServerConfig{Host: "h", User: "ec2-user", KeyPath: "/k", InstanceConnect: &InstanceConnectConfig{
				InstanceID: "web-1",
			}},
			wantField: "instance_connect.instance_id",
		},
		{
			name:      "bad initial path",
			config:    ServerConfig{Host: "h", User: "dev", KeyPath: "/k", InitialPath: "/srv\"; id"},
			wantField: "initial_path",
		},
		{
			name:      "bad bin",
			config:    ServerConfig{Host: "h", User: "dev", KeyPath: "/k", Bin: "bash -c id"},
			wantField: "bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateServerConfig(&tt.config)
			if tt.wantField == "" {
				if errs.HasErrors() {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestValidateProjectConfig(t *testing.T) {
	tests := []struct {
		name       string
		config     ProjectConfig
		wantErrors bool
	}{
		{"script", ProjectConfig{Script: ScriptConfig{Path: "deploy.sh"}}, false},
		{"uploads", ProjectConfig{Uploads: []UploadConfig{{Source: "a", Target: "/b"}}}, false},
		{"empty", ProjectConfig{}, true},
		{"missing upload source", ProjectConfig{Uploads: []UploadConfig{{Target: "/b"}}}, true},
		{"missing upload target", ProjectConfig{Uploads: []UploadConfig{{Source: "a"}}}, true},
		{"bad name", ProjectConfig{Name: "My App", Script: ScriptConfig{Path: "d.sh"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateProjectConfig(&tt.config)
			if errs.HasErrors() != tt.wantErrors {
				t.Errorf("ValidateProjectConfig() = %v, wantErrors %v", errs, tt.wantErrors)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "host", Message: "required"},
		{Field: "user", Message: "required"},
	}
	got := errs.Error()
	if !strings.Contains(got, "host: required") || !strings.Contains(got, "; user: required") {
		t.Errorf("Error() = %q", got)
	}
	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should render empty")
	}
}
