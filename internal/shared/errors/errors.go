package errors

import "errors"

// Configuration errors
var (
	ErrNoDomains       = errors.New("no domains specified")
	ErrNoScanners      = errors.New("no scanners specified")
	ErrUnknownScanner  = errors.New("unknown scanner")
	ErrMissingCacheDir = errors.New("cache directory does not exist")
)

// Scanner lifecycle errors
var (
	// ErrInitFailed aborts the whole run when a scanner's init declines.
	ErrInitFailed = errors.New("scanner initialization failed")
	// ErrSkipDomain is returned by a scanner's per-domain init to skip the
	// domain silently: no row, no log line.
	ErrSkipDomain = errors.New("skip domain")
	// ErrNoProbe means a scanner declares neither a scan hook nor a
	// headless scan hook.
	ErrNoProbe = errors.New("scanner has no scan function")
)

// Executor errors: remote responses, and the local headless bridge
var (
	ErrEmptyResponse    = errors.New("empty response from remote function")
	ErrMissingData      = errors.New("remote response is missing the data field")
	ErrNoHeadlessBridge = errors.New("headless browser bridge is not configured")
)
