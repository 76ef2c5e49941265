package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/yoanbernabeu/sshdeploy/internal/config"
	"github.com/yoanbernabeu/sshdeploy/internal/deploy"
)

func TestParseVars(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"single", []string{"PORT=8080"}, map[string]string{"PORT": "8080"}, false},
		{"value with equals", []string{"DSN=a=b"}, map[string]string{"DSN": "a=b"}, false},
		{"empty value", []string{"EMPTY="}, map[string]string{"EMPTY": ""}, false},
		{"last wins", []string{"A=1", "A=2"}, map[string]string{"A": "2"}, false},
		{"missing equals", []string{"PORT"}, nil, true},
		{"empty key", []string{"=x"}, nil, true},
		{"percent in key", []string{"A%B=x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVars(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseVars() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseVars() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseVars()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestCollectVars(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.env")
	second := filepath.Join(dir, "b.env")
	if err := os.WriteFile(first, []byte("PORT=1\nHOST=a\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("USER=deploy\n"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := collectVars([]string{first, second}, []string{"PORT=2"})
	if err != nil {
		t.Fatalf("collectVars() error = %v", err)
	}
	want := map[string]string{"PORT": "2", "HOST": "a", "USER": "deploy"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("collectVars()[%q] = %q, want %q", k, got[k], v)
		}
	}

	if _, err := collectVars([]string{filepath.Join(dir, "missing.env")}, nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseHostSpec(t *testing.T) {
	tests := []struct {
		spec     string
		wantUser string
		wantHost string
		wantErr  bool
	}{
		{"deploy@host.example", "deploy", "host.example", false},
		{"@host.example", "", "host.example", false},
		{"host.example", "", "", true},
		{"deploy@", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			user, host, err := parseHostSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHostSpec(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if user != tt.wantUser || host != tt.wantHost {
				t.Errorf("parseHostSpec(%q) = %q, %q", tt.spec, user, host)
			}
		})
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1\n", 0},
		{" 3 \n", 2},
		{"0\n", -1},
		{"\n", -1},
		{"4\n", -1},
		{"x\n", -1},
	}

	for _, tt := range tests {
		if got := parseSelection(tt.input, 3); got != tt.want {
			t.Errorf("parseSelection(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestServerNames(t *testing.T) {
	t.Setenv("SSHDEPLOY_SERVER", "")
	if _, err := serverNames(nil); err == nil {
		t.Error("expected error without args or env")
	}

	t.Setenv("SSHDEPLOY_SERVER", "prod")
	got, err := serverNames(nil)
	if err != nil || len(got) != 1 || got[0] != "prod" {
		t.Errorf("serverNames(nil) = %v, %v", got, err)
	}

	got, err = serverNames([]string{"a", "b"})
	if err != nil || len(got) != 2 {
		t.Errorf("explicit args should win, got %v, %v", got, err)
	}
}

func TestServerError(t *testing.T) {
	a := &deploy.PhaseError{Server: "a", Phase: deploy.PhaseUploadFiles, Err: errors.New("x")}
	b := &deploy.PhaseError{Server: "b", Phase: deploy.PhaseRunScript, Err: errors.New("y")}
	joined := errors.Join(a, b)

	if got := serverError(joined, "b"); got != b {
		t.Errorf("serverError(b) = %v", got)
	}
	if got := serverError(joined, "c"); got != nil {
		t.Errorf("serverError(c) = %v, want nil", got)
	}
	if got := serverError(fmt.Errorf("plain"), "a"); got != nil {
		t.Errorf("serverError(plain) = %v, want nil", got)
	}
}

func TestJobTarget(t *testing.T) {
	globalCfg := &config.GlobalConfig{DefaultBin: "bash"}

	tests := []struct {
		name      string
		server    config.ServerConfig
		scriptBin string
		want      string
	}{
		{"server bin wins over default", config.ServerConfig{Host: "h", User: "u", Bin: "python3"}, "", "python3"},
		{"script bin wins over server", config.ServerConfig{Host: "h", User: "u", Bin: "python3"}, "sh", "sh"},
		{"default bin", config.ServerConfig{Host: "h", User: "u"}, "", "bash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := jobTarget("web", &tt.server, globalCfg, tt.scriptBin)
			if target.Bin != tt.want {
				t.Errorf("Bin = %q, want %q", target.Bin, tt.want)
			}
			if target.Name != "web" || target.Host != "h" || target.User != "u" {
				t.Errorf("target = %+v", target)
			}
		})
	}
}

func TestStarterConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "webapp")
	path := filepath.Join(dir, "sshdeploy.yaml")

	tests := []struct {
		name     string
		given    string
		wantName string
	}{
		{"directory name", "", "webapp"},
		{"explicit name", "api", "api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := starterConfig(path, tt.given, "deploy.sh", "sh")
			if cfg.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", cfg.Name, tt.wantName)
			}
			if cfg.Script.Path != "deploy.sh" || cfg.Script.Bin != "sh" {
				t.Errorf("Script = %+v", cfg.Script)
			}
		})
	}
}

func TestWriteStarterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sshdeploy.yaml")
	cfg := &config.ProjectConfig{Name: "web", Script: config.ScriptConfig{Path: "deploy.sh"}}

	if err := writeStarterConfig(cfg, path, false); err != nil {
		t.Fatalf("writeStarterConfig() error = %v", err)
	}
	loaded, err := config.LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("LoadProjectConfig() error = %v", err)
	}
	if loaded.Name != "web" || loaded.Script.Path != "deploy.sh" {
		t.Errorf("loaded = %+v", loaded)
	}

	if err := writeStarterConfig(cfg, path, false); err == nil {
		t.Error("expected error when config exists without force")
	}

	cfg.Name = "api"
	if err := writeStarterConfig(cfg, path, true); err != nil {
		t.Fatalf("writeStarterConfig(force) error = %v", err)
	}
	if loaded, err = config.LoadProjectConfig(path); err != nil || loaded.Name != "api" {
		t.Errorf("after force: %+v, %v", loaded, err)
	}
}

func TestKeyDescription(t *testing.T) {
	if got := keyDescription(&config.ServerConfig{KeyPath: "/k"}); got != "/k" {
		t.Errorf("keyDescription(path) = %q", got)
	}
	src := &config.ServerConfig{KeySource: &config.KeySourceConfig{Provider: "aws", Service: "svc", Variable: "var"}}
	if got := keyDescription(src); got != "aws:/svc/var" {
		t.Errorf("keyDescription(source) = %q", got)
	}
}

func TestRootCommands(t *testing.T) {
	want := map[string]bool{"init": false, "server": false, "shell": false, "upload": false, "deploy": false, "call": false}
	for _, c := range GetRootCmd().Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
