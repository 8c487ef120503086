package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/khanhnv2901/domainscan/internal/env"
	"github.com/khanhnv2901/domainscan/internal/output"
	"github.com/khanhnv2901/domainscan/internal/scanner"
	"github.com/khanhnv2901/domainscan/internal/shared/constants"
	sharederrors "github.com/khanhnv2901/domainscan/internal/shared/errors"
)

// runScanner drives one scanner's lifecycle: init, bounded fan-out over the
// domains, finalize. Reports whether the remote executor was used.
func (c *Controller) runScanner(ctx context.Context, sc scanner.Scanner, domains []string) (bool, error) {
	useRemote := c.Config.Lambda
	if pref, ok := sc.(scanner.RemotePreference); ok {
		useRemote = pref.UseLambda()
	}
	if useRemote && c.Deps.Remote == nil {
		return false, fmt.Errorf("scanner %s requires the remote executor but none is configured", sc.Name())
	}

	method := env.MethodLocal
	if useRemote {
		method = env.MethodRemote
	}

	workers := c.resolveWorkers(sc)
	baseEnv := env.New(method, c.scanUUID, workers)

	// Init runs before the table opens: a declined init must leave no
	// output behind for this or any later scanner.
	if init, ok := sc.(scanner.Initializer); ok {
		delta, err := init.Init(baseEnv, c.Config.Options)
		if err != nil {
			return useRemote, fmt.Errorf("%w: %s: %v", sharederrors.ErrInitFailed, sc.Name(), err)
		}
		baseEnv.Merge(delta)
	}

	header := output.HeaderRow(sc.Headers(), c.Config.Meta, c.Config.Meta && useRemote)
	table, err := output.OpenTable(output.TablePath(c.Config.ResultsDir, sc.Name()), header)
	if err != nil {
		return useRemote, err
	}

	c.log().Infof("scanner %s: %d domains, %d workers, method=%s", sc.Name(), len(domains), workers, method)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for _, d := range domains {
		wg.Add(1)
		go func(domainName string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			c.scanDomain(ctx, sc, table, domainName, baseEnv, useRemote)
		}(d)
	}
	wg.Wait()

	if fin, ok := sc.(scanner.Finalizer); ok {
		if err := fin.Finalize(baseEnv, c.Config.Options); err != nil {
			c.log().Errorf("scanner %s finalize: %v", sc.Name(), err)
		}
	}

	if err := table.Close(); err != nil {
		return useRemote, err
	}
	if c.Config.Sort {
		if err := output.SortByDomain(table.Path); err != nil {
			return useRemote, err
		}
	}
	return useRemote, nil
}

// resolveWorkers applies scanner default, CLI override and the global cap.
func (c *Controller) resolveWorkers(sc scanner.Scanner) int {
	workers := constants.DefaultWorkers
	if hint, ok := sc.(scanner.WorkerHinter); ok {
		workers = hint.DefaultWorkers()
	}
	if c.Config.Workers > 0 {
		workers = c.Config.Workers
	}
	if workers > constants.GlobalMaxWorkers {
		workers = constants.GlobalMaxWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
