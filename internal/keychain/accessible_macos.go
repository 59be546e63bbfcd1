//go:build darwin && !ios

package keychain

import gokeychain "github.com/keybase/go-keychain"

// go-keychain does not expose WhenPasscodeSetThisDeviceOnly on macOS.
var platformAccessible = map[Sentinel]gokeychain.Accessible{
	SentinelAfterFirstUnlock:               gokeychain.AccessibleAfterFirstUnlock,
	SentinelAfterFirstUnlockThisDeviceOnly: gokeychain.AccessibleAfterFirstUnlockThisDeviceOnly,
	SentinelWhenUnlocked:                   gokeychain.AccessibleWhenUnlocked,
	SentinelWhenUnlockedThisDeviceOnly:     gokeychain.AccessibleWhenUnlockedThisDeviceOnly,
	SentinelAlways:                         gokeychain.AccessibleAlways,
	SentinelAlwaysThisDeviceOnly:           gokeychain.AccessibleAccessibleAlwaysThisDeviceOnly,
}

var probeOrder = []Sentinel{
	SentinelWhenUnlocked,
	SentinelAfterFirstUnlock,
	SentinelWhenUnlockedThisDeviceOnly,
	SentinelAfterFirstUnlockThisDeviceOnly,
	SentinelAlways,
	SentinelAlwaysThisDeviceOnly,
}
