package keychain

import "fmt"

// DataStore is the byte-level surface the typed helpers build on. Both
// *Store and *AuditedStore satisfy it.
type DataStore interface {
	Data(key string, opts ...Option) ([]byte, bool)
	SetData(key string, value []byte, opts ...Option) error
	Codec() Codec
}

// Numeric covers the scalar number types accepted by Number and SetNumber.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Object reads key and decodes it into a T.
func Object[T any](s DataStore, key string, opts ...Option) (T, bool, error) {
	var v T
	data, ok := s.Data(key, opts...)
	if !ok {
		return v, false, nil
	}
	if err := s.Codec().Unmarshal(data, &v); err != nil {
		return v, true, fmt.Errorf("%w: %q: %v", ErrDecode, key, err)
	}
	return v, true, nil
}

// SetObject encodes v and stores it under key.
func SetObject[T any](s DataStore, key string, v T, opts ...Option) error {
	data, err := s.Codec().Marshal(v)
	if err != nil {
		return fmt.Errorf("keychain encode %q: %w", key, err)
	}
	return s.SetData(key, data, opts...)
}

// Number reads a number stored by SetNumber. Numbers are stored wrapped in
// a single-element sequence, e.g. [42].
func Number[T Numeric](s DataStore, key string, opts ...Option) (T, bool, error) {
	var zero T
	wrapped, ok, err := Object[[]T](s, key, opts...)
	if !ok || err != nil {
		return zero, ok, err
	}
	if len(wrapped) != 1 {
		return zero, true, fmt.Errorf("%w: %q: expected one number, got %d", ErrDecode, key, len(wrapped))
	}
	return wrapped[0], true, nil
}

// SetNumber stores n under key as a single-element sequence. An array keeps
// byte-sized types out of encoding/json's base64 form for []byte.
func SetNumber[T Numeric](s DataStore, key string, n T, opts ...Option) error {
	return SetObject(s, key, [1]T{n}, opts...)
}
