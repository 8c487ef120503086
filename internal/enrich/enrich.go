// Package enrich appends remote-side measurements to finished result tables
// by querying the serverless platform's log store.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/khanhnv2901/domainscan/internal/output"
	"github.com/khanhnv2901/domainscan/internal/shared/constants"
)

// LogsClient is the slice of the CloudWatch Logs API the enricher needs.
type LogsClient interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// Columns appended to each enriched table.
var EnrichHeaders = []string{"Reported Duration", "Log Delay", "Memory Used", "Fetching Errors"}

const noLogsMessage = "No logs found for this task."

// The platform's REPORT line terminates with this token; anchoring the
// filter on it skips START/END lines for the same request.
const reportTerminator = "Max Memory Used"

// Enricher reads a table, queries the log store per row, and rewrites the
// table in place with the extra measurement columns.
type Enricher struct {
	Client  LogsClient
	Limiter *rate.Limiter
	Workers int
	Log     *zap.SugaredLogger
}

// New builds an enricher with the default rate limit and worker bound.
func New(client LogsClient, log *zap.SugaredLogger) *Enricher {
	return &Enricher{
		Client:  client,
		Limiter: rate.NewLimiter(rate.Limit(constants.CloudWatchQueriesPerSecond), constants.CloudWatchQueriesPerSecond),
		Workers: constants.EnrichWorkers,
		Log:     log,
	}
}

// EnrichTable appends the measurement columns to every row. Rows query the
// log store independently and in parallel; the rewritten table replaces the
// original atomically.
func (e *Enricher) EnrichTable(ctx context.Context, path string) error {
	header, rows, err := output.ReadTable(path)
	if err != nil {
		return err
	}

	idx := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		return -1
	}
	requestIdx := idx("Request ID")
	groupIdx := idx("Log Group Name")
	streamIdx := idx("Log Stream Name")
	endIdx := idx("End Time")
	if requestIdx < 0 || groupIdx < 0 || streamIdx < 0 || endIdx < 0 {
		return fmt.Errorf("table %s has no remote execution columns", path)
	}

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range rows {
		row := rows[i]
		g.Go(func() error {
			cells := e.enrichRow(groupCtx,
				cell(row, requestIdx), cell(row, groupIdx), cell(row, streamIdx), cell(row, endIdx))
			rows[i] = append(row, cells...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	newHeader := append(append([]string{}, header...), EnrichHeaders...)
	return output.ReplaceTable(path, newHeader, rows)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// enrichRow resolves [Reported Duration, Log Delay, Memory Used, Fetching
// Errors] for one row. Failures stay per-row.
func (e *Enricher) enrichRow(ctx context.Context, requestID, logGroup, logStream, endTime string) []string {
	if requestID == "" || logGroup == "" {
		return []string{"", "", "", noLogsMessage}
	}

	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			return []string{"", "", "", err.Error()}
		}
	}

	input := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName:  aws.String(logGroup),
		FilterPattern: aws.String(fmt.Sprintf("%q %q", requestID, reportTerminator)),
	}
	if logStream != "" {
		input.LogStreamNames = []string{logStream}
	}

	out, err := e.Client.FilterLogEvents(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ThrottlingException" {
			return []string{"", "", "", "too many requests"}
		}
		return []string{"", "", "", fmt.Sprintf("fetching logs failed: %v", err)}
	}
	if len(out.Events) == 0 {
		return []string{"", "", "", noLogsMessage}
	}

	event := out.Events[len(out.Events)-1]

	// REPORT lines are tab-separated key:value fields; duration is field 1
	// and max memory used field 4.
	fields := strings.Split(aws.ToString(event.Message), "\t")
	if len(fields) < 5 {
		return []string{"", "", "", fmt.Sprintf("unexpected report line: %q", aws.ToString(event.Message))}
	}

	duration := fieldValue(fields[1])
	memory := fieldValue(fields[4])

	logDelay := ""
	if end, perr := strconv.ParseFloat(endTime, 64); perr == nil && event.IngestionTime != nil {
		logDelay = strconv.FormatFloat(float64(*event.IngestionTime)/1000.0-end, 'f', -1, 64)
	}

	return []string{duration, logDelay, memory, ""}
}

// fieldValue extracts the value of a "Key: value" report field.
func fieldValue(field string) string {
	parts := strings.SplitN(field, ":", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(field)
	}
	return strings.TrimSpace(parts[1])
}
