// Package audit provides append-only structured logging for secret operations.
//
// Every secret access (read, write, delete, clear, wipe) performed through an
// audited store is recorded as newline-delimited JSON. Appends take an
// advisory lock on a sibling ".lock" file so that concurrent keyward
// processes never interleave lines.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Action describes what happened.
type Action string

const (
	ActionSecretRead   Action = "secret_read"
	ActionSecretWrite  Action = "secret_write"
	ActionSecretDelete Action = "secret_delete"
	ActionSecretClear  Action = "secret_clear"
	ActionSecretWipe   Action = "secret_wipe"
)

// Entry is a single audit log record.
type Entry struct {
	Timestamp     time.Time `json:"ts"`
	Action        Action    `json:"action"`
	Key           string    `json:"key,omitempty"`
	Service       string    `json:"service,omitempty"`
	AccessGroup   string    `json:"access_group,omitempty"`
	Accessibility string    `json:"accessibility,omitempty"`
	Actor         string    `json:"actor,omitempty"` // "cli", "example"
	Error         string    `json:"error,omitempty"`
}

// LockTimeout bounds how long Log waits for another process's append.
const LockTimeout = 5 * time.Second

// Logger writes audit entries to an append-only file.
type Logger struct {
	mu   sync.Mutex
	file *os.File
	lock *flock.Flock
	path string
}

// NewLogger creates or opens an audit log file for appending.
func NewLogger(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &Logger{file: f, lock: flock.New(path + ".lock"), path: path}, nil
}

// Path returns the log file path.
func (l *Logger) Path() string { return l.path }

// Log writes an audit entry.
func (l *Logger) Log(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling audit entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := l.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("locking audit log: %w", err)
	}
	if !locked {
		return fmt.Errorf("locking audit log: timeout")
	}
	defer l.lock.Unlock()

	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}

// Close closes the audit log file.
func (l *Logger) Close() error {
	return l.file.Close()
}
