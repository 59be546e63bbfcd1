package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/benaskins/keyward/internal/audit"
	"github.com/benaskins/keyward/internal/config"
	"github.com/benaskins/keyward/internal/keychain"
)

// cli holds flag values and the store opened for the running command.
type cli struct {
	configPath    string
	service       string
	accessGroup   string
	accessibility string
	backend       string
	verbose       bool

	cfg      config.Config
	store    *keychain.AuditedStore
	opts     []keychain.Option
	auditLog *audit.Logger

	openBackend func(kind string, opts keychain.KeyringOptions) (keychain.Backend, error)
	logOutput   io.Writer
}

func newCLI() *cli {
	return &cli{
		openBackend: keychain.OpenBackend,
		logOutput:   os.Stderr,
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "keyward",
		Short:         "Typed access to the platform keychain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&c.service, "service", "", "service name namespacing the items")
	root.PersistentFlags().StringVar(&c.accessGroup, "access-group", "", "access group shared between applications")
	root.PersistentFlags().StringVar(&c.accessibility, "accessibility", "", "accessibility policy, e.g. when-unlocked or after-first-unlock")
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "backend: system, keyring, go-keyring or memory")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	for _, cmd := range []*cobra.Command{
		newSetCmd(c),
		newGetCmd(c),
		newHasCmd(c),
		newAccessibilityCmd(c),
		newListCmd(c),
		newDeleteCmd(c),
		newClearCmd(c),
		newWipeCmd(c),
	} {
		cmd.PreRunE = func(cmd *cobra.Command, args []string) error { return c.open() }
		cmd.PostRunE = func(cmd *cobra.Command, args []string) error { return c.close() }
		root.AddCommand(cmd)
	}
	return root
}

func (c *cli) setupLogging() {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(c.logOutput, &slog.HandlerOptions{Level: level})))
}

// loadConfig merges the config file with command-line flags. Flags win.
func (c *cli) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}

	if c.service != "" {
		cfg.ServiceName = c.service
	}
	if c.accessGroup != "" {
		cfg.AccessGroup = c.accessGroup
	}
	if c.accessibility != "" {
		cfg.Accessibility = c.accessibility
	}
	if c.backend != "" {
		cfg.Backend = c.backend
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg.Resolve(), nil
}

func (c *cli) open() error {
	c.setupLogging()
	c.close()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.cfg = cfg

	backend, err := c.openBackend(cfg.Backend, cfg.KeyringOptions())
	if err != nil {
		return fmt.Errorf("opening backend %q: %w", cfg.Backend, err)
	}
	codec, err := keychain.CodecByName(cfg.Codec)
	if err != nil {
		return err
	}

	a, ok, err := cfg.AccessibilityValue()
	if err != nil {
		return err
	}
	c.opts = nil
	if ok {
		c.opts = append(c.opts, keychain.WithAccessibility(a))
	}

	c.auditLog, err = openAuditLog(cfg.AuditLog)
	if err != nil {
		slog.Warn("audit log unavailable, continuing without it", "path", cfg.AuditLog, "error", err)
	}

	inner := keychain.NewStore(cfg.ServiceName,
		keychain.WithBackend(backend),
		keychain.WithAccessGroup(cfg.AccessGroup),
		keychain.WithCodec(codec),
	)
	c.store = keychain.NewAuditedStore(inner, c.auditLog, "cli")

	slog.Debug("store opened", "service", cfg.ServiceName, "access_group", cfg.AccessGroup, "backend", cfg.Backend)
	return nil
}

func (c *cli) close() error {
	if c.auditLog == nil {
		return nil
	}
	err := c.auditLog.Close()
	c.auditLog = nil
	return err
}
