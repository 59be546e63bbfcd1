package keychain

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"unicode/utf8"
)

// Store is a namespace of items in a Backend, identified by a service name
// and an optional access group. It holds no mutable state; every call
// re-queries the backend.
type Store struct {
	service     string
	accessGroup string
	backend     Backend
	codec       Codec
	logger      *slog.Logger
}

// StoreOption configures a Store at construction.
type StoreOption func(*Store)

// WithAccessGroup scopes the store to a sharing access group.
func WithAccessGroup(group string) StoreOption {
	return func(s *Store) {
		s.accessGroup = group
	}
}

// WithBackend sets the platform backend. Defaults to SystemBackend().
func WithBackend(b Backend) StoreOption {
	return func(s *Store) {
		s.backend = b
	}
}

// WithCodec sets the codec for typed values. Defaults to JSONCodec.
func WithCodec(c Codec) StoreOption {
	return func(s *Store) {
		s.codec = c
	}
}

// WithLogger sets the logger. Defaults to slog with component=keychain.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a store for serviceName. It never fails; backend errors
// surface on individual operations.
func NewStore(serviceName string, opts ...StoreOption) *Store {
	s := &Store{
		service: serviceName,
		codec:   JSONCodec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend == nil {
		s.backend = SystemBackend()
	}
	if s.logger == nil {
		s.logger = slog.With("component", "keychain", "service", serviceName)
	}
	return s
}

// ServiceName returns the store's service name.
func (s *Store) ServiceName() string { return s.service }

// AccessGroup returns the store's access group, "" when unset.
func (s *Store) AccessGroup() string { return s.accessGroup }

// Backend returns the backend the store talks to.
func (s *Store) Backend() Backend { return s.backend }

// Codec returns the codec used for typed values.
func (s *Store) Codec() Codec { return s.codec }

// Option adjusts a single store call.
type Option func(*callOptions)

type callOptions struct {
	accessibility Accessibility
}

// WithAccessibility filters reads, updates and deletes by the exact
// accessibility, and sets it on insert.
func WithAccessibility(a Accessibility) Option {
	return func(o *callOptions) {
		o.accessibility = a
	}
}

func resolveOptions(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// keyQuery builds the lookup query for key. The key bytes go into both the
// generic and account attributes so either can match.
//
// An empty key is rejected: the macOS keychain drops an empty account
// attribute, which would turn the query into a match on the whole service.
func (s *Store) keyQuery(key string, o callOptions) (Query, error) {
	var q Query
	if key == "" {
		return q, fmt.Errorf("%w: empty key", ErrUnsupported)
	}
	if o.accessibility != 0 && !o.accessibility.Valid() {
		return q, fmt.Errorf("%w: %s", ErrUnsupported, o.accessibility)
	}
	q.Set(AttrClass, ClassGenericPassword)
	q.Set(AttrService, s.service)
	if o.accessibility != 0 {
		q.Set(AttrAccessible, o.accessibility.Sentinel())
	}
	if s.accessGroup != "" {
		q.Set(AttrAccessGroup, s.accessGroup)
	}
	encoded := []byte(key)
	q.Set(AttrGeneric, encoded)
	q.Set(AttrAccount, encoded)
	return q, nil
}

// namespaceQuery matches every item of the store.
func (s *Store) namespaceQuery() Query {
	var q Query
	q.Set(AttrClass, ClassGenericPassword)
	q.Set(AttrService, s.service)
	if s.accessGroup != "" {
		q.Set(AttrAccessGroup, s.accessGroup)
	}
	return q
}

// Has reports whether Data would return a value for key.
func (s *Store) Has(key string, opts ...Option) bool {
	q, err := s.keyQuery(key, resolveOptions(opts))
	if err != nil {
		return false
	}
	q.Set(AttrMatchLimit, MatchOne)
	q.Set(AttrReturnAttributes, true)

	results, err := s.backend.CopyMatching(q)
	if err != nil {
		return false
	}
	return len(results) == 1
}

// AccessibilityOf returns the accessibility key was stored with. It reports
// false when key does not exist or its sentinel is not a known policy.
func (s *Store) AccessibilityOf(key string) (Accessibility, bool) {
	q, err := s.keyQuery(key, callOptions{})
	if err != nil {
		return 0, false
	}
	q.Set(AttrMatchLimit, MatchOne)
	q.Set(AttrReturnAttributes, true)

	results, err := s.backend.CopyMatching(q)
	if err != nil || len(results) != 1 {
		return 0, false
	}
	return AccessibilityForSentinel(results[0].Accessible)
}

// AllKeys returns the distinct keys of every item in the store, sorted.
// Enumeration failures yield an empty result.
func (s *Store) AllKeys() []string {
	q := s.namespaceQuery()
	q.Set(AttrReturnAttributes, true)
	q.Set(AttrMatchLimit, MatchAll)

	results, err := s.backend.CopyMatching(q)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Debug("enumeration failed", "error", err)
		}
		return []string{}
	}

	seen := make(map[string]struct{}, len(results))
	keys := make([]string, 0, len(results))
	for _, r := range results {
		if !utf8.Valid(r.Account) {
			continue
		}
		k := string(r.Account)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Data returns the raw payload stored under key.
func (s *Store) Data(key string, opts ...Option) ([]byte, bool) {
	q, err := s.keyQuery(key, resolveOptions(opts))
	if err != nil {
		s.logger.Debug("read rejected", "key", key, "error", err)
		return nil, false
	}
	q.Set(AttrMatchLimit, MatchOne)
	q.Set(AttrReturnData, true)

	results, err := s.backend.CopyMatching(q)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Debug("read failed", "key", key, "error", err)
		}
		return nil, false
	}
	if len(results) != 1 {
		s.logger.Warn("expected a single match", "key", key, "matches", len(results))
		return nil, false
	}
	return results[0].Data, true
}

// String returns the payload under key as a string. Payloads that are not
// valid UTF-8 are reported as absent.
func (s *Store) String(key string, opts ...Option) (string, bool) {
	data, ok := s.Data(key, opts...)
	if !ok {
		return "", false
	}
	return decodeUTF8(data)
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// Unmarshal decodes the payload under key into v with the store's codec.
// found is false when key is absent; a decode failure wraps ErrDecode.
func (s *Store) Unmarshal(key string, v any, opts ...Option) (found bool, err error) {
	data, ok := s.Data(key, opts...)
	if !ok {
		return false, nil
	}
	if err := s.codec.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("%w: %q: %v", ErrDecode, key, err)
	}
	return true, nil
}

// SetData stores value under key. An existing item with the same key is
// updated in place using the same filter. On insert the accessibility
// defaults to WhenUnlocked.
func (s *Store) SetData(key string, value []byte, opts ...Option) error {
	o := resolveOptions(opts)

	q, err := s.keyQuery(key, o)
	if err != nil {
		return fmt.Errorf("keychain add %q: %w", key, err)
	}
	q.Set(AttrData, value)
	if o.accessibility == 0 {
		q.Set(AttrAccessible, DefaultAccessibility.Sentinel())
	}

	err = s.backend.Add(q)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrDuplicateItem) {
		return fmt.Errorf("keychain add %q: %w", key, err)
	}

	s.logger.Debug("item exists, updating", "key", key)
	return s.update(key, value, o)
}

func (s *Store) update(key string, value []byte, o callOptions) error {
	q, err := s.keyQuery(key, o)
	if err != nil {
		return fmt.Errorf("keychain update %q: %w", key, err)
	}
	var changes Query
	changes.Set(AttrData, value)

	if err := s.backend.Update(q, changes); err != nil {
		return fmt.Errorf("keychain update %q: %w", key, err)
	}
	return nil
}

// SetString stores value under key as UTF-8.
func (s *Store) SetString(key, value string, opts ...Option) error {
	return s.SetData(key, []byte(value), opts...)
}

// Marshal encodes v with the store's codec and stores it under key.
func (s *Store) Marshal(key string, v any, opts ...Option) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("keychain encode %q: %w", key, err)
	}
	return s.SetData(key, data, opts...)
}

// Remove deletes the item under key. It returns ErrNotFound when nothing
// matched, including when the accessibility filter differs.
func (s *Store) Remove(key string, opts ...Option) error {
	q, err := s.keyQuery(key, resolveOptions(opts))
	if err != nil {
		return fmt.Errorf("keychain delete %q: %w", key, err)
	}
	if err := s.backend.Delete(q); err != nil {
		return fmt.Errorf("keychain delete %q: %w", key, err)
	}
	return nil
}

// RemoveAll deletes every item of the store in one backend call.
func (s *Store) RemoveAll() error {
	if err := s.backend.Delete(s.namespaceQuery()); err != nil {
		return fmt.Errorf("keychain delete all in %q: %w", s.service, err)
	}
	return nil
}
