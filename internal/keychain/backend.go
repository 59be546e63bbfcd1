package keychain

import "fmt"

// Backend kinds accepted by OpenBackend.
const (
	BackendSystem    = "system"
	BackendKeyring   = "keyring"
	BackendGoKeyring = "go-keyring"
	BackendMemory    = "memory"
)

// BackendKinds lists the names OpenBackend accepts.
func BackendKinds() []string {
	return []string{BackendSystem, BackendKeyring, BackendGoKeyring, BackendMemory}
}

// OpenBackend returns the backend named by kind. An empty kind selects the
// system backend. opts applies to the keyring kinds only.
func OpenBackend(kind string, opts KeyringOptions) (Backend, error) {
	switch kind {
	case "", BackendSystem:
		return SystemBackend(), nil
	case BackendKeyring:
		b, err := NewKeyringBackend(opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendGoKeyring:
		return NewGoKeyringBackend(opts.serviceName()), nil
	case BackendMemory:
		return NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("unknown backend %q (want one of %v)", kind, BackendKinds())
}
