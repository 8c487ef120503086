// Package env carries the keyed environment passed through a scanner's
// lifecycle hooks. Values must stay JSON-serializable: everything except the
// fast cache crosses the wire to the remote executor.
package env

import (
	"github.com/tiendc/go-deepcopy"
)

// Reserved keys every scanner environment carries.
const (
	KeyScanMethod = "scan_method"
	KeyScanUUID   = "scan_uuid"
	KeyWorkers    = "workers"

	// KeyFastCache holds a large shared in-memory lookup table. It is
	// aliased on copy and stripped before remote dispatch.
	KeyFastCache = "fast_cache"
)

// Scan methods stored under KeyScanMethod.
const (
	MethodLocal  = "local"
	MethodRemote = "remote"
)

// Environment is the per-scanner (and, after Clone, per-domain) state bag.
type Environment map[string]any

// New builds the base environment for one scanner run.
func New(method, scanUUID string, workers int) Environment {
	return Environment{
		KeyScanMethod: method,
		KeyScanUUID:   scanUUID,
		KeyWorkers:    workers,
	}
}

// Merge copies delta entries into e, overwriting existing keys.
func (e Environment) Merge(delta map[string]any) {
	for k, v := range delta {
		e[k] = v
	}
}

// Clone deep-copies the environment so per-domain init deltas cannot leak
// between concurrent tasks. The fast cache is aliased, never cloned. The
// receiver is only read: concurrent tasks clone the same base environment.
func (e Environment) Clone() Environment {
	var fast any
	hasFast := false

	src := make(Environment, len(e))
	for k, v := range e {
		if k == KeyFastCache {
			fast, hasFast = v, true
			continue
		}
		src[k] = v
	}

	out := make(Environment, len(e))
	if err := deepcopy.Copy(&out, src); err != nil {
		// Fall back to a shallow copy; scanner deltas replace whole
		// values rather than mutating nested ones.
		for k, v := range src {
			out[k] = v
		}
	}

	if hasFast {
		out[KeyFastCache] = fast
	}
	return out
}

// WithoutFastCache returns a shallow copy suitable for serialization into a
// remote invocation envelope.
func (e Environment) WithoutFastCache() Environment {
	out := make(Environment, len(e))
	for k, v := range e {
		if k == KeyFastCache {
			continue
		}
		out[k] = v
	}
	return out
}

// Workers reads the worker count, defaulting to 1 when unset or mistyped.
func (e Environment) Workers() int {
	if n, ok := e[KeyWorkers].(int); ok && n > 0 {
		return n
	}
	return 1
}
