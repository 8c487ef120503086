package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/khanhnv2901/domainscan/internal/cache"
	"github.com/khanhnv2901/domainscan/internal/domain"
	"github.com/khanhnv2901/domainscan/internal/env"
	"github.com/khanhnv2901/domainscan/internal/meta"
	"github.com/khanhnv2901/domainscan/internal/output"
	"github.com/khanhnv2901/domainscan/internal/scanner"
	sharederrors "github.com/khanhnv2901/domainscan/internal/shared/errors"
)

// scanDomain runs one (scanner, domain) task: per-domain init, cache lookup,
// executor dispatch, post-scan hook, cache write and row emission. Whatever
// fails along the way, the task tries to leave a row behind.
func (c *Controller) scanDomain(ctx context.Context, sc scanner.Scanner, table *output.Table, domainName string, baseEnv env.Environment, useRemote bool) {
	m := meta.New()

	defer func() {
		if r := recover(); r != nil {
			m.AddError("panic: %v", r)
			c.emitRows(sc, table, domainName, nil, m, useRemote)
		}
	}()

	scanEnv := baseEnv
	if di, ok := sc.(scanner.DomainInitializer); ok {
		scanEnv = baseEnv.Clone()
		delta, err := di.InitDomain(domainName, scanEnv, c.Config.Options)
		if errors.Is(err, sharederrors.ErrSkipDomain) {
			return
		}
		if err != nil {
			m.AddError("init_domain: %s", err.Error())
		} else {
			scanEnv.Merge(delta)
		}
	}

	var payload any
	executed := false

	hit := cache.Absent
	if c.Config.Cache {
		payload, hit = c.Deps.Store.Read(sc.Name(), domainName)
	}

	if hit == cache.Absent {
		executed = true
		m.StartTime = time.Now().UTC()

		var err error
		if useRemote {
			payload, err = c.Deps.Remote.Scan(ctx, sc, domainName, scanEnv, c.Config.Options, m)
		} else {
			payload, err = c.Deps.Local.Scan(ctx, sc, domainName, scanEnv, c.Config.Options)
		}

		m.EndTime = time.Now().UTC()
		m.Duration = m.EndTime.Sub(m.StartTime).Seconds()
		if err != nil {
			m.AddError("%s", err.Error())
		}
	}

	if ps, ok := sc.(scanner.PostScanner); ok {
		if err := ps.PostScan(domainName, payload, scanEnv, c.Config.Options); err != nil {
			c.log().Errorf("[%s][%s] post_scan: %v", sc.Name(), domainName, err)
		}
	}

	// Writes happen even with cache reads disabled, so the next cached run
	// starts warm. An empty result is recorded as the invalid sentinel.
	if executed {
		if err := c.Deps.Store.Write(sc.Name(), domainName, payload); err != nil {
			m.AddError("cache write: %s", err.Error())
		}
		if payload == nil {
			m.AddError("Scan returned nothing.")
		}
	}

	c.emitRows(sc, table, domainName, payload, m, useRemote)
}

// emitRows flattens the payload and appends one table row per result row,
// or a single empty row when there is nothing to report.
func (c *Controller) emitRows(sc scanner.Scanner, table *output.Table, domainName string, payload any, m *meta.Meta, useRemote bool) {
	for _, msg := range m.Errors {
		c.log().Errorf("[%s][%s] %s", sc.Name(), domainName, msg)
	}

	var rows [][]any
	if payload != nil {
		rows = sc.Rows(payload)
	}
	if len(rows) == 0 {
		rows = [][]any{nil}
	}

	baseDomain := domain.BaseDomain(domainName)
	scannerWidth := len(sc.Headers())

	var metaCells []string
	if c.Config.Meta {
		metaCells = output.MetaCells(m, useRemote)
	}

	for _, row := range rows {
		cells := make([]string, 0, 2+scannerWidth+len(metaCells))
		cells = append(cells, domainName, baseDomain)
		for i := 0; i < scannerWidth; i++ {
			if i < len(row) {
				cells = append(cells, output.FormatCell(row[i]))
			} else {
				cells = append(cells, "")
			}
		}
		cells = append(cells, metaCells...)
		if err := table.Append(cells); err != nil {
			c.log().Errorf("[%s][%s] emit row: %v", sc.Name(), domainName, err)
		}
	}
}
