package keychain

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	zkeyring "github.com/zalando/go-keyring"
)

// indexUser holds the list of entry ids. go-keyring cannot enumerate, so
// the index is what AllKeys and Wipe walk. Entry ids always contain '/', so
// the index never collides with an item.
const indexUser = "index"

// GoKeyringBackend emulates the Keychain attribute model on the OS keyring
// through github.com/zalando/go-keyring. Every item is stored under one
// keyring service as a JSON envelope.
type GoKeyringBackend struct {
	emulator
}

// NewGoKeyringBackend creates a backend storing entries under service.
func NewGoKeyringBackend(service string) *GoKeyringBackend {
	if service == "" {
		service = FallbackServiceName
	}
	b := &GoKeyringBackend{}
	b.records = goKeyringRecords{service: service}
	return b
}

type goKeyringRecords struct {
	service string
}

func (g goKeyringRecords) lookup(id string) (record, bool, error) {
	s, err := zkeyring.Get(g.service, id)
	if errors.Is(err, zkeyring.ErrNotFound) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, fmt.Errorf("go-keyring get failed: %w", err)
	}
	r, err := decodeEnvelope([]byte(s))
	if err != nil {
		return record{}, false, fmt.Errorf("go-keyring entry %q: %w", id, err)
	}
	return r, true, nil
}

func (g goKeyringRecords) all() (map[string]record, error) {
	ids, err := g.index()
	if err != nil {
		return nil, err
	}
	out := make(map[string]record, len(ids))
	for _, id := range ids {
		r, ok, err := g.lookup(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out[id] = r
		}
	}
	return out, nil
}

func (g goKeyringRecords) put(id string, r record) error {
	data, err := encodeEnvelope(r)
	if err != nil {
		return err
	}
	if err := zkeyring.Set(g.service, id, string(data)); err != nil {
		return fmt.Errorf("go-keyring set failed: %w", err)
	}

	ids, err := g.index()
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	return g.writeIndex(append(ids, id))
}

func (g goKeyringRecords) remove(id string) error {
	err := zkeyring.Delete(g.service, id)
	if err != nil && !errors.Is(err, zkeyring.ErrNotFound) {
		return fmt.Errorf("go-keyring delete failed: %w", err)
	}

	ids, err := g.index()
	if err != nil {
		return err
	}
	i := slices.Index(ids, id)
	if i < 0 {
		return nil
	}
	return g.writeIndex(slices.Delete(ids, i, i+1))
}

func (g goKeyringRecords) index() ([]string, error) {
	s, err := zkeyring.Get(g.service, indexUser)
	if errors.Is(err, zkeyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("go-keyring read index: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("go-keyring corrupt index: %w", err)
	}
	return ids, nil
}

func (g goKeyringRecords) writeIndex(ids []string) error {
	if len(ids) == 0 {
		err := zkeyring.Delete(g.service, indexUser)
		if err != nil && !errors.Is(err, zkeyring.ErrNotFound) {
			return fmt.Errorf("go-keyring write index: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := zkeyring.Set(g.service, indexUser, string(data)); err != nil {
		return fmt.Errorf("go-keyring write index: %w", err)
	}
	return nil
}
