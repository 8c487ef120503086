// Package scanner defines the pluggable probe module contract and the
// built-in probes. A scanner must know its name, its output columns, and how
// to flatten a payload into rows; everything else is an optional capability.
package scanner

import (
	"context"

	"github.com/khanhnv2901/domainscan/internal/env"
)

// Options carries the CLI options relevant to scanners. Values must be
// JSON-serializable; they are forwarded verbatim to remote invocations.
type Options map[string]any

// Scanner is the minimal contract every probe module satisfies.
type Scanner interface {
	// Name identifies the scanner; it names the output table, the cache
	// subdirectory, and the remote function (task_<name>).
	Name() string

	// Headers lists the scanner's output columns, in order.
	Headers() []string

	// Rows flattens one scan payload into zero or more rows. Each cell is
	// rendered with output.FormatCell. Payload is the JSON-normalized
	// value returned by a scan; never nil.
	Rows(payload any) [][]any
}

// Prober is the local scan capability. Scanners without it must implement
// HeadlessProber or be remote-only.
type Prober interface {
	Scan(ctx context.Context, domain string, e env.Environment, opts Options) (any, error)
}

// Initializer runs once per scanner before any domain. The returned delta is
// merged into the shared environment. An error aborts the entire run.
type Initializer interface {
	Init(e env.Environment, opts Options) (map[string]any, error)
}

// DomainInitializer runs once per domain against a private copy of the
// environment. Returning errors.ErrSkipDomain skips the domain silently.
type DomainInitializer interface {
	InitDomain(domain string, e env.Environment, opts Options) (map[string]any, error)
}

// PostScanner runs after a scan completes, before the payload is cached.
// Side effects only; a returned error is logged and otherwise ignored.
type PostScanner interface {
	PostScan(domain string, payload any, e env.Environment, opts Options) error
}

// Finalizer runs once per scanner after every domain task has completed.
type Finalizer interface {
	Finalize(e env.Environment, opts Options) error
}

// Page is a rendered page handed to headless scanners by the browser bridge.
type Page struct {
	URL   string
	Title string
	HTML  string
}

// HeadlessProber marks a scanner whose probe needs a real browser. The
// executor fetches the page and delegates to ScanPage.
type HeadlessProber interface {
	ScanPage(ctx context.Context, domain string, page *Page, e env.Environment, opts Options) (any, error)
}

// WorkerHinter lets a scanner declare its own default worker count,
// overridable from the CLI and capped by the global maximum.
type WorkerHinter interface {
	DefaultWorkers() int
}

// RemotePreference lets a scanner override the run-wide executor choice.
type RemotePreference interface {
	UseLambda() bool
}
