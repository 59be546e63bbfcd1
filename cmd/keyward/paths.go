package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/benaskins/keyward/internal/audit"
)

// openAuditLog opens the audit log, creating its directory (0700) if needed.
func openAuditLog(path string) (*audit.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return audit.NewLogger(path)
}
