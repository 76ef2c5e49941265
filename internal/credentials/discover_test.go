package credentials

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"
)

func writeECDSAKey(t *testing.T, dir, name string) string {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatalf("Failed to marshal key: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("Failed to write key: %v", err)
	}
	return path
}

func TestDiscoverKeys(t *testing.T) {
	dir := t.TempDir()
	writeECDSAKey(t, dir, "id_ecdsa")
	writeTestKey(t, dir, "id_ed25519", "")
	writeTestKey(t, dir, "deploy.pem", "secret")

	// Ignored entries
	if err := os.WriteFile(filepath.Join(dir, "id_ed25519.pub"), []byte("ssh-ed25519 AAAA... test@example.com"), 0644); err != nil {
		t.Fatalf("Failed to create .pub file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "known_hosts"), []byte(""), 0644); err != nil {
		t.Fatalf("Failed to create known_hosts: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "id_broken"), []byte("not a key"), 0600); err != nil {
		t.Fatalf("Failed to create broken key: %v", err)
	}

	keys, err := DiscoverKeys(dir)
	if err != nil {
		t.Fatalf("DiscoverKeys() error = %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("DiscoverKeys() found %d keys, want 3: %+v", len(keys), keys)
	}

	// ed25519 keys first (plain and encrypted), ecdsa last
	if keys[2].Name != "id_ecdsa" || keys[2].Type != "ecdsa" {
		t.Errorf("last key = %+v, want id_ecdsa", keys[2])
	}
	for _, k := range keys[:2] {
		if k.Type != "ed25519" {
			t.Errorf("key %s type = %q, want ed25519", k.Name, k.Type)
		}
		if k.Name == "deploy.pem" && !k.IsEncrypted {
			t.Error("deploy.pem should be reported as encrypted")
		}
		if k.Name == "id_ed25519" && k.IsEncrypted {
			t.Error("id_ed25519 should not be reported as encrypted")
		}
	}
}

func TestDiscoverKeys_MissingDir(t *testing.T) {
	keys, err := DiscoverKeys(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Errorf("DiscoverKeys() error = %v, want nil", err)
	}
	if len(keys) != 0 {
		t.Errorf("DiscoverKeys() = %v, want none", keys)
	}
}

func TestInspectKey(t *testing.T) {
	tmpDir := t.TempDir()
	validKeyPath := writeTestKey(t, tmpDir, "id_ed25519", "")

	t.Run("valid key", func(t *testing.T) {
		info, err := InspectKey(validKeyPath)
		if err != nil {
			t.Fatalf("InspectKey() error = %v, want nil", err)
		}
		if info.Name != "id_ed25519" {
			t.Errorf("Name = %v, want id_ed25519", info.Name)
		}
		if info.IsEncrypted {
			t.Errorf("IsEncrypted = true, want false")
		}
	})

	t.Run("nonexistent key", func(t *testing.T) {
		if _, err := InspectKey(filepath.Join(tmpDir, "nonexistent")); err == nil {
			t.Error("InspectKey() error = nil, want error")
		}
	})

	t.Run("invalid key content", func(t *testing.T) {
		invalidPath := filepath.Join(tmpDir, "invalid_key")
		if err := os.WriteFile(invalidPath, []byte("not a key"), 0600); err != nil {
			t.Fatalf("Failed to write invalid key: %v", err)
		}
		if _, err := InspectKey(invalidPath); err == nil {
			t.Error("InspectKey() error = nil, want error")
		}
	})
}

func TestKeyTypePriority(t *testing.T) {
	tests := []struct {
		keyType  string
		expected int
	}{
		{"ed25519", 1},
		{"rsa", 2},
		{"ecdsa", 3},
		{"dsa", 4},
		{"unknown", 4},
	}

	for _, tt := range tests {
		t.Run(tt.keyType, func(t *testing.T) {
			if got := keyTypePriority(tt.keyType); got != tt.expected {
				t.Errorf("keyTypePriority(%s) = %v, want %v", tt.keyType, got, tt.expected)
			}
		})
	}
}

func TestShortKeyType(t *testing.T) {
	tests := map[string]string{
		ssh.KeyAlgoED25519:           "ed25519",
		ssh.KeyAlgoRSA:               "rsa",
		ssh.KeyAlgoECDSA256:          "ecdsa",
		ssh.KeyAlgoECDSA384:          "ecdsa",
		"ssh-dss":                    "dsa",
		"sk-ssh-ed25519@openssh.com": "unknown",
	}
	for algo, want := range tests {
		if got := shortKeyType(algo); got != want {
			t.Errorf("shortKeyType(%q) = %q, want %q", algo, got, want)
		}
	}
}
