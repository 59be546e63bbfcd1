// Package keychain provides typed access to a platform credential store.
//
// Items are stored as generic passwords with:
//   - Service: the store's service name (one logical namespace per store)
//   - Account and Generic: the item key, UTF-8 encoded
//   - Access group: optional sharing domain
//   - Accessible: one of the Accessibility policies (WhenUnlocked by default)
//
// The platform store is reached through a Backend. On darwin the system
// backend is the real Keychain; elsewhere it is an OS keyring that emulates
// the Keychain attribute model.
package keychain

import "errors"

var (
	// ErrNotFound is returned when no item matches a query.
	ErrNotFound = errors.New("keychain item not found")

	// ErrDuplicateItem is returned by Backend.Add when an item with the same
	// primary key already exists.
	ErrDuplicateItem = errors.New("keychain item already exists")

	// ErrUnsupported is returned when a backend cannot express an attribute
	// value, e.g. an accessibility the running OS does not offer.
	ErrUnsupported = errors.New("keychain attribute not supported")

	// ErrDecode wraps codec failures on typed reads. It is distinct from
	// absence, which is reported as found == false.
	ErrDecode = errors.New("keychain value could not be decoded")
)

// Backend is the platform credential store, reduced to its four primitives.
//
// Status mapping: success is nil, a duplicate insert is ErrDuplicateItem, a
// query without matches is ErrNotFound. Any other error is a generic failure.
type Backend interface {
	Add(q Query) error
	CopyMatching(q Query) ([]Result, error)
	Update(q Query, changes Query) error
	Delete(q Query) error
}

// Result is a single match returned by Backend.CopyMatching. Data is only
// populated when the query asked for it.
type Result struct {
	Class       SecClass
	Service     string
	Account     []byte
	Generic     []byte
	AccessGroup string
	Accessible  Sentinel
	Data        []byte
}
