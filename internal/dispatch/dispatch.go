// Package dispatch is the scan dispatcher: it composes scanner modules with
// their lifecycle, fans domains out over a bounded worker pool per scanner,
// routes each probe to the local or remote executor, and feeds the result
// cache and the per-scanner tables.
package dispatch

import (
	"time"

	"go.uber.org/zap"

	"github.com/khanhnv2901/domainscan/internal/cache"
	"github.com/khanhnv2901/domainscan/internal/enrich"
	"github.com/khanhnv2901/domainscan/internal/executor"
	"github.com/khanhnv2901/domainscan/internal/scanner"
)

// Config is the per-run configuration resolved from flags and config file.
type Config struct {
	ResultsDir string
	CacheDir   string

	Cache bool
	Meta  bool
	Sort  bool

	// Lambda selects the remote executor run-wide; scanners can override.
	Lambda        bool
	LambdaRetries int
	LambdaDetails bool

	// Workers overrides every scanner's default worker count when > 0.
	Workers int

	// Options is forwarded to scanner hooks and remote invocations.
	Options scanner.Options

	// Command is recorded verbatim in the run metadata.
	Command string
}

// Deps are the shared collaborators for one run. Local is always present;
// Remote and Enricher only when the run may touch the serverless side.
type Deps struct {
	Log      *zap.SugaredLogger
	Local    *executor.Local
	Remote   *executor.Remote
	Store    *cache.Store
	Enricher *enrich.Enricher

	// Sleep is the settle-delay seam; tests replace it.
	Sleep func(time.Duration)
}

// Controller runs scanners sequentially over the domain set.
type Controller struct {
	Config Config
	Deps   Deps

	scanUUID string
}

func (c *Controller) log() *zap.SugaredLogger {
	if c.Deps.Log != nil {
		return c.Deps.Log
	}
	return zap.NewNop().Sugar()
}

func (c *Controller) sleep(d time.Duration) {
	if c.Deps.Sleep != nil {
		c.Deps.Sleep(d)
		return
	}
	time.Sleep(d)
}
