package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benaskins/keyward/internal/keychain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `service_name: com.example.app
access_group: TEAMID.com.example.shared
accessibility: after-first-unlock
backend: keyring
codec: yaml
audit_log: /var/log/keyward/audit.log
keyring:
  service_name: keyward-test
  allowed_backends: [secret-service, file]
  file_dir: /tmp/keyring
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServiceName != "com.example.app" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "com.example.app")
	}
	if cfg.AccessGroup != "TEAMID.com.example.shared" {
		t.Errorf("AccessGroup = %q, want %q", cfg.AccessGroup, "TEAMID.com.example.shared")
	}
	if cfg.Accessibility != "after-first-unlock" {
		t.Errorf("Accessibility = %q, want %q", cfg.Accessibility, "after-first-unlock")
	}
	if cfg.Backend != "keyring" {
		t.Errorf("Backend = %q, want %q", cfg.Backend, "keyring")
	}
	if cfg.Codec != "yaml" {
		t.Errorf("Codec = %q, want %q", cfg.Codec, "yaml")
	}
	if got := cfg.Keyring.AllowedBackends; len(got) != 2 || got[0] != "secret-service" || got[1] != "file" {
		t.Errorf("AllowedBackends = %v", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	opts := cfg.KeyringOptions()
	if opts.ServiceName != "keyward-test" || opts.FileDir != "/tmp/keyring" {
		t.Errorf("KeyringOptions = %+v", opts)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.ServiceName != "" {
		t.Errorf("ServiceName = %q, want empty", cfg.ServiceName)
	}
	if cfg.Backend != "" {
		t.Errorf("Backend = %q, want empty", cfg.Backend)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServiceName != "" {
		t.Errorf("ServiceName = %q, want empty", cfg.ServiceName)
	}
}

func TestLoadCommentsOnly(t *testing.T) {
	t.Parallel()
	cfg, err := Load(writeConfig(t, `# service_name: com.example.app
# backend: memory
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServiceName != "" {
		t.Errorf("ServiceName = %q, want empty", cfg.ServiceName)
	}
	if cfg.Backend != "" {
		t.Errorf("Backend = %q, want empty", cfg.Backend)
	}
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()
	_, err := Load(writeConfig(t, "service_name: [unterminated\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsUnknownNames(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"accessibility", Config{Accessibility: "always"}, "accessibility"},
		{"backend", Config{Backend: "vault"}, "backend"},
		{"codec", Config{Codec: "toml"}, "codec"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	t.Parallel()
	cfg := Config{}.Resolve()
	if cfg.ServiceName != keychain.DefaultServiceName() {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, keychain.DefaultServiceName())
	}
	if cfg.Backend != keychain.BackendSystem {
		t.Errorf("Backend = %q, want %q", cfg.Backend, keychain.BackendSystem)
	}
	if cfg.Codec != "json" {
		t.Errorf("Codec = %q, want json", cfg.Codec)
	}
	if cfg.AuditLog != DefaultAuditLog() {
		t.Errorf("AuditLog = %q, want %q", cfg.AuditLog, DefaultAuditLog())
	}
}

func TestResolveExpandsHome(t *testing.T) {
	t.Parallel()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg := Config{AuditLog: "~/audit.log", Keyring: KeyringConfig{FileDir: "~/ring"}}.Resolve()
	if cfg.AuditLog != filepath.Join(home, "audit.log") {
		t.Errorf("AuditLog = %q", cfg.AuditLog)
	}
	if cfg.Keyring.FileDir != filepath.Join(home, "ring") {
		t.Errorf("FileDir = %q", cfg.Keyring.FileDir)
	}
}

func TestAccessibilityValue(t *testing.T) {
	t.Parallel()
	cfg := Config{}
	if _, ok, err := cfg.AccessibilityValue(); ok || err != nil {
		t.Errorf("unset: ok=%v err=%v", ok, err)
	}

	cfg.Accessibility = "when-unlocked-device-only"
	a, ok, err := cfg.AccessibilityValue()
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if a != keychain.WhenUnlockedThisDeviceOnly {
		t.Errorf("got %v, want %v", a, keychain.WhenUnlockedThisDeviceOnly)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()
	p := DefaultPath()
	if filepath.Base(p) != "config.yaml" || filepath.Base(filepath.Dir(p)) != "keyward" {
		t.Errorf("DefaultPath = %q", p)
	}
}
