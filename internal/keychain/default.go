package keychain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FallbackServiceName namespaces the default store when the executable name
// cannot be determined.
const FallbackServiceName = "keyward"

var (
	systemBackend = sync.OnceValue(newSystemBackend)
	defaultStore  = sync.OnceValue(func() *Store {
		return NewStore(DefaultServiceName())
	})
)

// SystemBackend returns the process-wide platform backend. It is created on
// first use.
func SystemBackend() Backend {
	return systemBackend()
}

// Default returns the process-wide store, namespaced by the executable name
// and without an access group.
func Default() *Store {
	return defaultStore()
}

// DefaultServiceName derives a service name from the running executable.
func DefaultServiceName() string {
	exe, err := os.Executable()
	if err != nil {
		return FallbackServiceName
	}
	name := strings.TrimSuffix(filepath.Base(exe), ".exe")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return FallbackServiceName
	}
	return name
}

// Wipe deletes every item of every class in b, regardless of service or
// access group. This is not scoped to any store: on the system backend it
// removes credentials written by other programs too.
func Wipe(b Backend) error {
	var errs []error
	for _, class := range AllClasses {
		var q Query
		q.Set(AttrClass, class)
		if err := b.Delete(q); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("keychain wipe %s: %w", class, err))
		}
	}
	return errors.Join(errs...)
}

// WipeSystem wipes the system backend. See Wipe.
func WipeSystem() error {
	return Wipe(SystemBackend())
}
