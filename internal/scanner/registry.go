package scanner

import (
	"fmt"
	"sort"
	"sync"

	sharederrors "github.com/khanhnv2901/domainscan/internal/shared/errors"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Scanner)
)

// Register adds a scanner to the registry. Built-in scanners register from
// init; registering a duplicate name panics early, before any run starts.
func Register(s Scanner) {
	registryMu.Lock()
	defer registryMu.Unlock()
	name := s.Name()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("scanner %q registered twice", name))
	}
	registry[name] = s
}

// Lookup resolves a scanner by name.
func Lookup(name string) (Scanner, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", sharederrors.ErrUnknownScanner, name)
	}
	return s, nil
}

// Names lists registered scanner names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
