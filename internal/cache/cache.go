// Package cache is the on-disk result store keyed by (scanner, domain).
// Presence of an entry means the scan completed; the invalid sentinel records
// a completed scan that returned nothing.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/khanhnv2901/domainscan/internal/shared/constants"
)

// State classifies a cache read.
type State int

const (
	// Absent means no usable entry exists; the executor must run.
	Absent State = iota
	// Hit means a payload was decoded.
	Hit
	// Invalid means the completed-but-empty sentinel was found. Callers
	// treat the payload as nil but do not re-execute.
	Invalid
)

type sentinel struct {
	Invalid bool `json:"invalid"`
}

// Store reads and writes cache entries under a root directory.
type Store struct {
	Root string
}

// Path derives the entry location for a (scanner, domain) pair.
func (s *Store) Path(scannerName, domain string) string {
	return filepath.Join(s.Root, scannerName, domain+".json")
}

// Read decodes the entry for (scanner, domain). Undecodable entries count as
// absent so a fresh scan can replace them.
func (s *Store) Read(scannerName, domain string) (any, State) {
	raw, err := os.ReadFile(s.Path(scannerName, domain))
	if err != nil {
		return nil, Absent
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, Absent
	}

	if m, ok := payload.(map[string]any); ok {
		if inv, ok := m["invalid"].(bool); ok && inv {
			return nil, Invalid
		}
	}
	return payload, Hit
}

// Write persists a payload for (scanner, domain); a nil payload stores the
// invalid sentinel. The entry is replaced atomically.
func (s *Store) Write(scannerName, domain string, payload any) error {
	var value any = payload
	if payload == nil {
		value = sentinel{Invalid: true}
	}

	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry for %s/%s: %w", scannerName, domain, err)
	}

	dir := filepath.Join(s.Root, scannerName)
	if err := os.MkdirAll(dir, constants.DefaultDirPerm); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, domain+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(scannerName, domain)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache entry: %w", err)
	}
	return nil
}
