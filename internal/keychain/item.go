package keychain

// Item binds a key and a value type to a store.
//
//	type Session struct {
//		Token keychain.Item[string]
//		Retry keychain.Item[int]
//	}
//
//	s := Session{
//		Token: keychain.StringItem(keychain.Default(), "session.token"),
//		Retry: keychain.NumberItem[int](keychain.Default(), "session.retry"),
//	}
type Item[T any] struct {
	key   string
	store DataStore
	opts  []Option
	get   func(DataStore, string, ...Option) (T, bool, error)
	set   func(DataStore, string, T, ...Option) error
}

// StringItem binds key to a UTF-8 string value.
func StringItem(store DataStore, key string, opts ...Option) Item[string] {
	return Item[string]{key: key, store: store, opts: opts, get: getString, set: setString}
}

// NumberItem binds key to a number stored by SetNumber.
func NumberItem[T Numeric](store DataStore, key string, opts ...Option) Item[T] {
	return Item[T]{key: key, store: store, opts: opts, get: Number[T], set: SetNumber[T]}
}

// ObjectItem binds key to a codec-encoded T.
func ObjectItem[T any](store DataStore, key string, opts ...Option) Item[T] {
	return Item[T]{key: key, store: store, opts: opts, get: Object[T], set: SetObject[T]}
}

// Key returns the bound key.
func (i Item[T]) Key() string { return i.key }

// Store returns the bound store.
func (i Item[T]) Store() DataStore { return i.store }

// Get reads the bound value.
func (i Item[T]) Get() (T, bool, error) {
	return i.get(i.store, i.key, i.opts...)
}

// Set writes the bound value.
func (i Item[T]) Set(v T) error {
	return i.set(i.store, i.key, v, i.opts...)
}

func getString(s DataStore, key string, opts ...Option) (string, bool, error) {
	data, ok := s.Data(key, opts...)
	if !ok {
		return "", false, nil
	}
	str, ok := decodeUTF8(data)
	return str, ok, nil
}

func setString(s DataStore, key string, v string, opts ...Option) error {
	return s.SetData(key, []byte(v), opts...)
}
