//go:build darwin

package keychain

import (
	"errors"
	"fmt"

	gokeychain "github.com/keybase/go-keychain"
)

// securityBackend reaches the Security framework through go-keychain.
//
// go-keychain has no setter for the generic attribute, so it is dropped;
// account carries the same key bytes. Query results carry no accessibility,
// so single-item attribute queries recover it by probing each sentinel.
type securityBackend struct{}

func newSystemBackend() Backend {
	return securityBackend{}
}

func (securityBackend) Add(q Query) error {
	item, err := toItem(q)
	if err != nil {
		return err
	}
	return fromStatus(gokeychain.AddItem(item))
}

func (b securityBackend) CopyMatching(q Query) ([]Result, error) {
	item, err := toItem(q)
	if err != nil {
		return nil, err
	}
	found, err := gokeychain.QueryItem(item)
	if err != nil {
		return nil, fromStatus(err)
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}

	results := make([]Result, 0, len(found))
	for _, r := range found {
		res := Result{
			Class:       q.Class(),
			Service:     r.Service,
			Account:     []byte(r.Account),
			Generic:     []byte(r.Account),
			AccessGroup: r.AccessGroup,
			Data:        r.Data,
		}
		if s, ok := q.Accessible(); ok {
			res.Accessible = s
		} else if q.Flag(AttrReturnAttributes) && q.MatchLimit() == MatchOne {
			res.Accessible = b.probeAccessible(q, res)
		}
		results = append(results, res)
	}
	return results, nil
}

// probeAccessible finds the sentinel r was stored with by repeating q with
// each supported sentinel as an exact filter.
func (securityBackend) probeAccessible(q Query, r Result) Sentinel {
	for _, s := range probeOrder {
		probe := q.Clone()
		probe.Delete(AttrReturnData)
		probe.Set(AttrAccount, r.Account)
		probe.Set(AttrAccessible, s)
		probe.Set(AttrMatchLimit, MatchOne)
		probe.Set(AttrReturnAttributes, true)

		item, err := toItem(probe)
		if err != nil {
			continue
		}
		found, err := gokeychain.QueryItem(item)
		if err == nil && len(found) > 0 {
			return s
		}
	}
	return ""
}

func (securityBackend) Update(q Query, changes Query) error {
	item, err := toItem(q)
	if err != nil {
		return err
	}
	update, err := toItem(changes)
	if err != nil {
		return err
	}
	return fromStatus(gokeychain.UpdateItem(item, update))
}

func (securityBackend) Delete(q Query) error {
	item, err := toItem(q)
	if err != nil {
		return err
	}
	return fromStatus(gokeychain.DeleteItem(item))
}

func toItem(q Query) (gokeychain.Item, error) {
	item := gokeychain.NewItem()
	for _, name := range q.Names() {
		switch name {
		case AttrClass:
			setClass(&item, q.Class())
		case AttrService:
			item.SetService(q.String(AttrService))
		case AttrAccessGroup:
			item.SetAccessGroup(q.String(AttrAccessGroup))
		case AttrAccessible:
			s, _ := q.Accessible()
			a, ok := platformAccessible[s]
			if !ok {
				return item, fmt.Errorf("%w: accessibility %s", ErrUnsupported, s)
			}
			item.SetAccessible(a)
		case AttrAccount:
			item.SetAccount(string(q.Bytes(AttrAccount)))
		case AttrData:
			data := q.Bytes(AttrData)
			if data == nil {
				data = []byte{}
			}
			item.SetData(data)
		case AttrMatchLimit:
			if q.MatchLimit() == MatchAll {
				item.SetMatchLimit(gokeychain.MatchLimitAll)
			} else {
				item.SetMatchLimit(gokeychain.MatchLimitOne)
			}
		case AttrReturnData:
			item.SetReturnData(q.Flag(AttrReturnData))
		case AttrReturnAttributes:
			item.SetReturnAttributes(q.Flag(AttrReturnAttributes))
		}
	}
	return item, nil
}

func setClass(item *gokeychain.Item, class SecClass) {
	switch class {
	case ClassGenericPassword:
		item.SetSecClass(gokeychain.SecClassGenericPassword)
	case ClassInternetPassword:
		item.SetSecClass(gokeychain.SecClassInternetPassword)
	default:
		// The kSecClass constants are CFStrings holding these codes.
		item.SetString(gokeychain.SecClassKey, string(class))
	}
}

func fromStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gokeychain.ErrorDuplicateItem):
		return ErrDuplicateItem
	case errors.Is(err, gokeychain.ErrorItemNotFound):
		return ErrNotFound
	}
	return err
}
