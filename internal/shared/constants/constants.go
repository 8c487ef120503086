package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// GlobalMaxWorkers caps per-scanner parallelism regardless of overrides.
	GlobalMaxWorkers = 1000
	// DefaultWorkers is used when neither the scanner nor the CLI set a count.
	DefaultWorkers = 10
)

const (
	// LambdaFunctionPrefix names the remote function for a scanner:
	// LambdaFunctionPrefix + scanner name.
	LambdaFunctionPrefix = "task_"
	// LambdaReadTimeout bounds a single synchronous remote invocation.
	LambdaReadTimeout = 15 * time.Minute
	// LambdaLogSettleDelay is how long to wait after the last scan before
	// remote logs are assumed to have landed in the log store.
	LambdaLogSettleDelay = 20 * time.Second
)

const (
	// CloudWatchQueriesPerSecond throttles post-run log queries.
	CloudWatchQueriesPerSecond = 5
	// EnrichWorkers bounds concurrent post-run log queries.
	EnrichWorkers = 4
)
