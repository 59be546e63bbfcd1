package keychain

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mtibben/percent"
)

// record is one item as an emulated platform store keeps it.
type record struct {
	Class       SecClass `json:"class"`
	Service     string   `json:"service,omitempty"`
	AccessGroup string   `json:"access_group,omitempty"`
	Account     []byte   `json:"account,omitempty"`
	Generic     []byte   `json:"generic,omitempty"`
	Accessible  Sentinel `json:"accessible,omitempty"`
	Data        []byte   `json:"data,omitempty"`
}

// id is the primary key: class, service, access group and account. Two
// records with the same id are duplicates regardless of their other
// attributes.
func (r record) id() string {
	return strings.Join([]string{
		escapeSegment([]byte(r.Class)),
		escapeSegment([]byte(r.Service)),
		escapeSegment([]byte(r.AccessGroup)),
		escapeSegment(r.Account),
	}, "/")
}

// escapeSegment percent-escapes the path separator. Byte strings that are
// not valid UTF-8 are hex encoded behind a '~', which escaped text never
// starts with.
func escapeSegment(b []byte) string {
	if !utf8.Valid(b) {
		return "~" + hex.EncodeToString(b)
	}
	return percent.Encode(string(b), "/~")
}

func (r record) matches(q Query) bool {
	for _, name := range q.Names() {
		v, _ := q.Get(name)
		switch name {
		case AttrClass:
			if c, _ := v.(SecClass); c != r.Class {
				return false
			}
		case AttrService:
			if s, _ := v.(string); s != r.Service {
				return false
			}
		case AttrAccessGroup:
			if s, _ := v.(string); s != r.AccessGroup {
				return false
			}
		case AttrAccessible:
			if s, _ := v.(Sentinel); s != r.Accessible {
				return false
			}
		case AttrAccount:
			if b, _ := v.([]byte); !bytes.Equal(b, r.Account) {
				return false
			}
		case AttrGeneric:
			if b, _ := v.([]byte); !bytes.Equal(b, r.Generic) {
				return false
			}
		}
	}
	return true
}

// apply copies item attributes from q onto r.
func (r *record) apply(q Query) {
	for _, name := range q.Names() {
		v, _ := q.Get(name)
		switch name {
		case AttrClass:
			r.Class, _ = v.(SecClass)
		case AttrService:
			r.Service, _ = v.(string)
		case AttrAccessGroup:
			r.AccessGroup, _ = v.(string)
		case AttrAccessible:
			r.Accessible, _ = v.(Sentinel)
		case AttrAccount:
			b, _ := v.([]byte)
			r.Account = bytes.Clone(b)
		case AttrGeneric:
			b, _ := v.([]byte)
			r.Generic = bytes.Clone(b)
		case AttrData:
			b, _ := v.([]byte)
			r.Data = bytes.Clone(b)
		}
	}
}

func (r record) result(withData bool) Result {
	res := Result{
		Class:       r.Class,
		Service:     r.Service,
		Account:     bytes.Clone(r.Account),
		Generic:     bytes.Clone(r.Generic),
		AccessGroup: r.AccessGroup,
		Accessible:  r.Accessible,
	}
	if withData {
		res.Data = bytes.Clone(r.Data)
	}
	return res
}

// recordSet is the persistence underneath an emulator.
type recordSet interface {
	lookup(id string) (record, bool, error)
	all() (map[string]record, error)
	put(id string, r record) error
	remove(id string) error
}

// emulator implements Backend semantics on top of a recordSet: duplicate
// detection on the primary key, exact attribute matching, and match limits.
type emulator struct {
	mu      sync.Mutex
	records recordSet
}

func (e *emulator) Add(q Query) error {
	if q.Class() == "" {
		return fmt.Errorf("%w: item class required", ErrUnsupported)
	}
	var r record
	r.apply(q)
	if r.Accessible == "" {
		r.Accessible = DefaultAccessibility.Sentinel()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id := r.id()
	_, exists, err := e.records.lookup(id)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateItem
	}
	return e.records.put(id, r)
}

// matching returns ids of records matching q in primary-key order.
func (e *emulator) matching(q Query) (map[string]record, []string, error) {
	all, err := e.records.all()
	if err != nil {
		return nil, nil, err
	}
	var ids []string
	for id, r := range all {
		if r.matches(q) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return all, ids, nil
}

// CopyMatching always returns attributes; data only when the query asks
// for it.
func (e *emulator) CopyMatching(q Query) ([]Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	all, ids, err := e.matching(q)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	if q.MatchLimit() == MatchOne {
		ids = ids[:1]
	}

	withData := q.Flag(AttrReturnData)
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		results = append(results, all[id].result(withData))
	}
	return results, nil
}

func (e *emulator) Update(q Query, changes Query) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	all, ids, err := e.matching(q)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrNotFound
	}

	for _, id := range ids {
		r := all[id]
		r.apply(changes)
		newID := r.id()
		if newID != id {
			if _, taken := all[newID]; taken {
				return ErrDuplicateItem
			}
			if err := e.records.remove(id); err != nil {
				return err
			}
		}
		if err := e.records.put(newID, r); err != nil {
			return err
		}
	}
	return nil
}

func (e *emulator) Delete(q Query) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ids, err := e.matching(q)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrNotFound
	}
	for _, id := range ids {
		if err := e.records.remove(id); err != nil {
			return err
		}
	}
	return nil
}
