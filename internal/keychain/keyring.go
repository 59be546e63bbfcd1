package keychain

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/99designs/keyring"
	"github.com/adrg/xdg"
)

// KeyringOptions configures the OS keyring behind KeyringBackend and
// GoKeyringBackend.
type KeyringOptions struct {
	// ServiceName is the keyring's own service name; every item of every
	// store lives under it. Defaults to FallbackServiceName.
	ServiceName string

	// AllowedBackends restricts 99designs/keyring backends by name
	// ("secret-service", "keychain", "keyctl", "kwallet", "wincred", "file",
	// "pass"). Empty means all available.
	AllowedBackends []string

	// FileDir is the directory of the encrypted file backend.
	// Defaults to $XDG_DATA_HOME/keyward/keyring.
	FileDir string

	// FilePassword prompts for the file backend's password.
	// Defaults to keyring.TerminalPrompt.
	FilePassword keyring.PromptFunc
}

func (o KeyringOptions) serviceName() string {
	if o.ServiceName == "" {
		return FallbackServiceName
	}
	return o.ServiceName
}

// KeyringBackend emulates the Keychain attribute model on any keyring
// supported by github.com/99designs/keyring. Each item is one keyring entry
// holding a JSON envelope; the entry key is the escaped primary key
// class/service/access-group/account.
type KeyringBackend struct {
	emulator
}

// NewKeyringBackend opens an OS keyring.
func NewKeyringBackend(opts KeyringOptions) (*KeyringBackend, error) {
	cfg := keyring.Config{
		ServiceName:              opts.serviceName(),
		KeychainTrustApplication: true,
		FileDir:                  opts.FileDir,
		FilePasswordFunc:         opts.FilePassword,
	}
	if cfg.FileDir == "" {
		cfg.FileDir = filepath.Join(xdg.DataHome, FallbackServiceName, "keyring")
	}
	if cfg.FilePasswordFunc == nil {
		cfg.FilePasswordFunc = keyring.TerminalPrompt
	}
	for _, name := range opts.AllowedBackends {
		cfg.AllowedBackends = append(cfg.AllowedBackends, keyring.BackendType(name))
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return NewKeyringBackendFrom(ring), nil
}

// NewKeyringBackendFrom wraps an already opened keyring.
func NewKeyringBackendFrom(ring keyring.Keyring) *KeyringBackend {
	b := &KeyringBackend{}
	b.records = keyringRecords{
		ring:   ring,
		logger: slog.With("component", "keychain", "backend", "keyring"),
	}
	return b
}

const envelopeVersion = 1

// envelope is the JSON document stored per item.
type envelope struct {
	Version int `json:"v"`
	record
}

func encodeEnvelope(r record) ([]byte, error) {
	return json.Marshal(envelope{Version: envelopeVersion, record: r})
}

func decodeEnvelope(data []byte) (record, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return record{}, err
	}
	if e.Version != envelopeVersion || e.Class == "" {
		return record{}, fmt.Errorf("unsupported envelope version %d", e.Version)
	}
	return e.record, nil
}

func entryLabel(r record) string {
	return fmt.Sprintf("%s: %s", r.Service, r.Account)
}

type keyringRecords struct {
	ring   keyring.Keyring
	logger *slog.Logger
}

func (k keyringRecords) lookup(id string) (record, bool, error) {
	item, err := k.ring.Get(id)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, fmt.Errorf("keyring get failed: %w", err)
	}
	r, err := decodeEnvelope(item.Data)
	if err != nil {
		return record{}, false, fmt.Errorf("keyring entry %q: %w", id, err)
	}
	return r, true, nil
}

// all skips entries that are not envelopes, such as items written to the
// same keyring by other tools.
func (k keyringRecords) all() (map[string]record, error) {
	ids, err := k.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("keyring list failed: %w", err)
	}
	out := make(map[string]record, len(ids))
	for _, id := range ids {
		item, err := k.ring.Get(id)
		if errors.Is(err, keyring.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("keyring get failed: %w", err)
		}
		r, err := decodeEnvelope(item.Data)
		if err != nil {
			k.logger.Debug("skipping foreign entry", "key", id, "error", err)
			continue
		}
		out[id] = r
	}
	return out, nil
}

func (k keyringRecords) put(id string, r record) error {
	data, err := encodeEnvelope(r)
	if err != nil {
		return err
	}
	item := keyring.Item{
		Key:                       id,
		Data:                      data,
		Label:                     entryLabel(r),
		Description:               "keyward item",
		KeychainNotSynchronizable: true,
	}
	if err := k.ring.Set(item); err != nil {
		return fmt.Errorf("keyring set failed: %w", err)
	}
	return nil
}

func (k keyringRecords) remove(id string) error {
	err := k.ring.Remove(id)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("keyring delete failed: %w", err)
	}
	return nil
}
