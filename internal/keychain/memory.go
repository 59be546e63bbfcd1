package keychain

// MemoryBackend is an in-memory Backend with Keychain attribute semantics.
// It backs tests and is the last-resort system backend when no OS store is
// available; contents do not persist across restarts.
type MemoryBackend struct {
	emulator
	items memoryRecords
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	b := &MemoryBackend{items: make(memoryRecords)}
	b.records = b.items
	return b
}

// Len returns the number of stored items across all services and classes.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

type memoryRecords map[string]record

func (m memoryRecords) lookup(id string) (record, bool, error) {
	r, ok := m[id]
	return r, ok, nil
}

func (m memoryRecords) all() (map[string]record, error) {
	out := make(map[string]record, len(m))
	for id, r := range m {
		out[id] = r
	}
	return out, nil
}

func (m memoryRecords) put(id string, r record) error {
	m[id] = r
	return nil
}

func (m memoryRecords) remove(id string) error {
	delete(m, id)
	return nil
}
