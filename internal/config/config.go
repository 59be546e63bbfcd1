package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/benaskins/keyward/internal/keychain"
)

// Config holds CLI configuration loaded from $XDG_CONFIG_HOME/keyward/config.yaml.
type Config struct {
	ServiceName   string        `yaml:"service_name"`
	AccessGroup   string        `yaml:"access_group"`
	Accessibility string        `yaml:"accessibility"`
	Backend       string        `yaml:"backend"`
	Codec         string        `yaml:"codec"`
	AuditLog      string        `yaml:"audit_log"`
	Keyring       KeyringConfig `yaml:"keyring"`
}

// KeyringConfig configures the keyring and go-keyring backends.
type KeyringConfig struct {
	ServiceName     string   `yaml:"service_name"`
	AllowedBackends []string `yaml:"allowed_backends"`
	FileDir         string   `yaml:"file_dir"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "keyward", "config.yaml")
}

// DefaultAuditLog returns the default audit log path.
func DefaultAuditLog() string {
	return filepath.Join(xdg.StateHome, "keyward", "audit.log")
}

// Load reads a YAML config file from path. If the file does not exist,
// it returns an empty Config and no error. An empty or all-comment file
// also returns an empty Config with no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects unknown accessibility, backend and codec names.
func (c *Config) Validate() error {
	var errs []error
	if c.Accessibility != "" {
		if _, err := keychain.ParseAccessibility(c.Accessibility); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Backend != "" && !slices.Contains(keychain.BackendKinds(), c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if _, err := keychain.CodecByName(c.Codec); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Resolve returns a copy with defaults applied and "~/" expanded in paths.
func (c Config) Resolve() Config {
	if c.ServiceName == "" {
		c.ServiceName = keychain.DefaultServiceName()
	}
	if c.Backend == "" {
		c.Backend = keychain.BackendSystem
	}
	if c.Codec == "" {
		c.Codec = "json"
	}
	if c.AuditLog == "" {
		c.AuditLog = DefaultAuditLog()
	}
	c.AuditLog = expandHome(c.AuditLog)
	c.Keyring.FileDir = expandHome(c.Keyring.FileDir)
	return c
}

// AccessibilityValue parses Accessibility. ok is false when unset.
func (c *Config) AccessibilityValue() (a keychain.Accessibility, ok bool, err error) {
	if c.Accessibility == "" {
		return 0, false, nil
	}
	a, err = keychain.ParseAccessibility(c.Accessibility)
	if err != nil {
		return 0, false, err
	}
	return a, true, nil
}

// KeyringOptions maps the keyring section onto backend options.
func (c *Config) KeyringOptions() keychain.KeyringOptions {
	return keychain.KeyringOptions{
		ServiceName:     c.Keyring.ServiceName,
		AllowedBackends: c.Keyring.AllowedBackends,
		FileDir:         c.Keyring.FileDir,
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
