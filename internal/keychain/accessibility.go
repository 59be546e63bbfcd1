package keychain

import "fmt"

// Accessibility controls when a stored item can be read relative to the
// device lock state.
type Accessibility int

const (
	AfterFirstUnlock Accessibility = iota + 1
	AfterFirstUnlockThisDeviceOnly
	WhenPasscodeSetThisDeviceOnly
	// WhenUnlocked is the default for new items.
	WhenUnlocked
	WhenUnlockedThisDeviceOnly
)

// DefaultAccessibility is applied on insert when the caller does not choose one.
const DefaultAccessibility = WhenUnlocked

// Sentinel is an opaque accessibility value as the platform stores it.
type Sentinel string

const (
	SentinelAfterFirstUnlock               Sentinel = "kSecAttrAccessibleAfterFirstUnlock"
	SentinelAfterFirstUnlockThisDeviceOnly Sentinel = "kSecAttrAccessibleAfterFirstUnlockThisDeviceOnly"
	SentinelWhenPasscodeSetThisDeviceOnly  Sentinel = "kSecAttrAccessibleWhenPasscodeSetThisDeviceOnly"
	SentinelWhenUnlocked                   Sentinel = "kSecAttrAccessibleWhenUnlocked"
	SentinelWhenUnlockedThisDeviceOnly     Sentinel = "kSecAttrAccessibleWhenUnlockedThisDeviceOnly"

	// Deprecated since iOS 12 / macOS 10.14. Items carrying these still exist
	// on older stores but no Accessibility maps to them.
	SentinelAlways               Sentinel = "kSecAttrAccessibleAlways"
	SentinelAlwaysThisDeviceOnly Sentinel = "kSecAttrAccessibleAlwaysThisDeviceOnly"
)

type accessibilityEntry struct {
	value    Accessibility
	name     string
	sentinel Sentinel
}

var accessibilityTable = []accessibilityEntry{
	{AfterFirstUnlock, "after-first-unlock", SentinelAfterFirstUnlock},
	{AfterFirstUnlockThisDeviceOnly, "after-first-unlock-device-only", SentinelAfterFirstUnlockThisDeviceOnly},
	{WhenPasscodeSetThisDeviceOnly, "when-passcode-set-device-only", SentinelWhenPasscodeSetThisDeviceOnly},
	{WhenUnlocked, "when-unlocked", SentinelWhenUnlocked},
	{WhenUnlockedThisDeviceOnly, "when-unlocked-device-only", SentinelWhenUnlockedThisDeviceOnly},
}

// Accessibilities returns every policy in table order.
func Accessibilities() []Accessibility {
	out := make([]Accessibility, len(accessibilityTable))
	for i, e := range accessibilityTable {
		out[i] = e.value
	}
	return out
}

func (a Accessibility) entry() (accessibilityEntry, bool) {
	for _, e := range accessibilityTable {
		if e.value == a {
			return e, true
		}
	}
	return accessibilityEntry{}, false
}

// Valid reports whether a is one of the declared policies.
func (a Accessibility) Valid() bool {
	_, ok := a.entry()
	return ok
}

// Sentinel returns the platform value for a. It panics for values outside
// the declared set.
func (a Accessibility) Sentinel() Sentinel {
	e, ok := a.entry()
	if !ok {
		panic(fmt.Sprintf("keychain: invalid accessibility %d", int(a)))
	}
	return e.sentinel
}

func (a Accessibility) String() string {
	if e, ok := a.entry(); ok {
		return e.name
	}
	return fmt.Sprintf("accessibility(%d)", int(a))
}

// AccessibilityForSentinel maps a platform value back to a policy. Unknown
// and deprecated sentinels report false.
func AccessibilityForSentinel(s Sentinel) (Accessibility, bool) {
	for _, e := range accessibilityTable {
		if e.sentinel == s {
			return e.value, true
		}
	}
	return 0, false
}

// ParseAccessibility parses the kebab-case policy name used in config files
// and on the command line.
func ParseAccessibility(name string) (Accessibility, error) {
	for _, e := range accessibilityTable {
		if e.name == name {
			return e.value, nil
		}
	}
	return 0, fmt.Errorf("unknown accessibility %q", name)
}
