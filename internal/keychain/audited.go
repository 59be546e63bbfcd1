package keychain

import (
	"github.com/benaskins/keyward/internal/audit"
)

// AuditedStore wraps a Store and records every secret access to an audit log.
// Audit logging is best-effort: a failure to log never fails the operation.
type AuditedStore struct {
	inner *Store
	audit *audit.Logger
	actor string // "cli", "example"
}

// NewAuditedStore wraps an existing store with audit logging. A nil
// auditLog disables logging.
func NewAuditedStore(inner *Store, auditLog *audit.Logger, actor string) *AuditedStore {
	return &AuditedStore{
		inner: inner,
		audit: auditLog,
		actor: actor,
	}
}

// Store returns the wrapped store.
func (s *AuditedStore) Store() *Store { return s.inner }

// Codec returns the wrapped store's codec.
func (s *AuditedStore) Codec() Codec { return s.inner.Codec() }

func (s *AuditedStore) log(action audit.Action, key string, opts []Option, err error) {
	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		Action:      action,
		Key:         key,
		Service:     s.inner.ServiceName(),
		AccessGroup: s.inner.AccessGroup(),
		Actor:       s.actor,
	}
	if a := resolveOptions(opts).accessibility; a != 0 {
		entry.Accessibility = a.String()
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if logErr := s.audit.Log(entry); logErr != nil {
		s.inner.logger.Warn("audit log write failed", "action", action, "error", logErr)
	}
}

// Has does not read the payload and is not audited.
func (s *AuditedStore) Has(key string, opts ...Option) bool {
	return s.inner.Has(key, opts...)
}

func (s *AuditedStore) AccessibilityOf(key string) (Accessibility, bool) {
	return s.inner.AccessibilityOf(key)
}

func (s *AuditedStore) AllKeys() []string {
	return s.inner.AllKeys()
}

// Data reads key and records a read when a value was returned.
func (s *AuditedStore) Data(key string, opts ...Option) ([]byte, bool) {
	data, ok := s.inner.Data(key, opts...)
	if ok {
		s.log(audit.ActionSecretRead, key, opts, nil)
	}
	return data, ok
}

func (s *AuditedStore) String(key string, opts ...Option) (string, bool) {
	data, ok := s.Data(key, opts...)
	if !ok {
		return "", false
	}
	return decodeUTF8(data)
}

func (s *AuditedStore) SetData(key string, value []byte, opts ...Option) error {
	err := s.inner.SetData(key, value, opts...)
	s.log(audit.ActionSecretWrite, key, opts, err)
	return err
}

func (s *AuditedStore) SetString(key, value string, opts ...Option) error {
	return s.SetData(key, []byte(value), opts...)
}

func (s *AuditedStore) Remove(key string, opts ...Option) error {
	err := s.inner.Remove(key, opts...)
	s.log(audit.ActionSecretDelete, key, opts, err)
	return err
}

func (s *AuditedStore) RemoveAll() error {
	err := s.inner.RemoveAll()
	s.log(audit.ActionSecretClear, "", nil, err)
	return err
}

// Wipe wipes the wrapped store's whole backend. See Wipe.
func (s *AuditedStore) Wipe() error {
	err := Wipe(s.inner.Backend())
	s.log(audit.ActionSecretWipe, "", nil, err)
	return err
}
