// Package executor runs a scanner's probe for one domain, either in-process
// or as a synchronous remote function invocation.
package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/khanhnv2901/domainscan/internal/env"
	"github.com/khanhnv2901/domainscan/internal/scanner"
	sharederrors "github.com/khanhnv2901/domainscan/internal/shared/errors"
)

// Headless is the browser bridge collaborator. Scanners that declare a
// headless probe get a rendered page instead of raw network access.
type Headless interface {
	Fetch(ctx context.Context, domain string) (*scanner.Page, error)
}

// Local invokes a scanner's probe in the current process.
type Local struct {
	Browser Headless
	Log     *zap.SugaredLogger
}

// Scan runs the probe and normalizes the payload through a JSON round-trip
// so locally produced values match what a remote invocation would decode.
func (l *Local) Scan(ctx context.Context, sc scanner.Scanner, domainName string, e env.Environment, opts scanner.Options) (any, error) {
	var payload any
	var err error

	switch probe := sc.(type) {
	case scanner.HeadlessProber:
		if l.Browser == nil {
			return nil, sharederrors.ErrNoHeadlessBridge
		}
		var page *scanner.Page
		page, err = l.Browser.Fetch(ctx, domainName)
		if err != nil {
			return nil, fmt.Errorf("headless fetch for %s: %w", domainName, err)
		}
		payload, err = probe.ScanPage(ctx, domainName, page, e, opts)
	case scanner.Prober:
		payload, err = probe.Scan(ctx, domainName, e, opts)
	default:
		return nil, fmt.Errorf("%w: %s", sharederrors.ErrNoProbe, sc.Name())
	}
	if err != nil {
		return nil, err
	}

	return Normalize(payload)
}

// Normalize canonicalizes a payload by serializing to JSON and parsing it
// back, flattening timestamps and numeric forms. A nil payload stays nil.
func Normalize(payload any) (any, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("normalize payload: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize payload: %w", err)
	}
	return out, nil
}
