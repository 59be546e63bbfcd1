//go:build ios

package keychain

import gokeychain "github.com/keybase/go-keychain"

var platformAccessible = map[Sentinel]gokeychain.Accessible{
	SentinelAfterFirstUnlock:               gokeychain.AccessibleAfterFirstUnlock,
	SentinelAfterFirstUnlockThisDeviceOnly: gokeychain.AccessibleAfterFirstUnlockThisDeviceOnly,
	SentinelWhenPasscodeSetThisDeviceOnly:  gokeychain.AccessibleWhenPasscodeSetThisDeviceOnly,
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
	SentinelWhenPasscodeSetThisDeviceOnly,
	SentinelAlways,
	SentinelAlwaysThisDeviceOnly,
}
