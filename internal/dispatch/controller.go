package dispatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/khanhnv2901/domainscan/internal/output"
	"github.com/khanhnv2901/domainscan/internal/scanner"
	"github.com/khanhnv2901/domainscan/internal/shared/constants"
)

// Run executes every scanner in order over the domain set, then writes the
// run metadata record. A scanner init failure aborts immediately.
func (c *Controller) Run(ctx context.Context, domains []string, scanners []scanner.Scanner) error {
	if err := c.clearResults(); err != nil {
		return err
	}

	c.scanUUID = uuid.NewString()
	start := time.Now().UTC()
	durations := make(map[string]output.ScannerTiming, len(scanners))
	usedRemote := false

	for _, sc := range scanners {
		scStart := time.Now().UTC()
		remote, err := c.runScanner(ctx, sc, domains)
		if err != nil {
			return err
		}
		scEnd := time.Now().UTC()
		durations[sc.Name()] = output.ScannerTiming{
			Start:    scStart.Format(time.RFC3339),
			End:      scEnd.Format(time.RFC3339),
			Duration: scEnd.Sub(scStart).Seconds(),
		}
		usedRemote = usedRemote || remote
	}

	if usedRemote && c.Config.LambdaDetails && c.Deps.Enricher != nil {
		// Remote logs lag the invocations; let them land first.
		c.log().Infof("waiting %s for remote logs to settle", constants.LambdaLogSettleDelay)
		c.sleep(constants.LambdaLogSettleDelay)
		for _, sc := range scanners {
			table := output.TablePath(c.Config.ResultsDir, sc.Name())
			if err := c.Deps.Enricher.EnrichTable(ctx, table); err != nil {
				c.log().Errorf("enrich %s: %v", table, err)
			}
		}
	}

	end := time.Now().UTC()
	rm := output.RunMetadata{
		StartTime: start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
		Duration:  end.Sub(start).Seconds(),
		Durations: durations,
		Command:   c.Config.Command,
		ScanUUID:  c.scanUUID,
	}
	if err := output.WriteRunMetadata(c.Config.ResultsDir, rm); err != nil {
		return err
	}

	c.log().Infof("scan complete: %d domains, %d scanners, %.1fs", len(domains), len(scanners), rm.Duration)
	return nil
}

// clearResults removes prior result tables and the old run record so a
// fresh run never mixes with stale output.
func (c *Controller) clearResults() error {
	entries, err := os.ReadDir(c.Config.ResultsDir)
	if err != nil {
		return fmt.Errorf("read results directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == ".csv" || name == "meta.json" {
			if err := os.Remove(filepath.Join(c.Config.ResultsDir, name)); err != nil {
				return fmt.Errorf("clear prior results: %w", err)
			}
		}
	}
	return nil
}
