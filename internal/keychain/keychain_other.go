//go:build !darwin

package keychain

import "log/slog"

// newSystemBackend opens the OS keyring with default options. When none is
// available it falls back to a MemoryBackend; items then do not persist
// across restarts.
func newSystemBackend() Backend {
	b, err := NewKeyringBackend(KeyringOptions{})
	if err != nil {
		slog.Warn("no OS keyring available, using in-memory store", "component", "keychain", "error", err)
		return NewMemoryBackend()
	}
	return b
}
