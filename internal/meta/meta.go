// Package meta holds the per-attempt diagnostic record collected alongside
// each domain scan.
package meta

import (
	"fmt"
	"time"
)

// Lambda captures remote execution details reported back by the remote
// function, plus the dispatcher-side retry counter.
type Lambda struct {
	Retries          int     `json:"retries"`
	RequestID        string  `json:"request_id,omitempty"`
	LogGroupName     string  `json:"log_group_name,omitempty"`
	LogStreamName    string  `json:"log_stream_name,omitempty"`
	StartTime        float64 `json:"start_time,omitempty"`
	EndTime          float64 `json:"end_time,omitempty"`
	MemoryLimit      int     `json:"memory_limit,omitempty"`
	MeasuredDuration float64 `json:"measured_duration,omitempty"`
}

// Merge overlays fields reported by one remote attempt, keeping the retry
// counter. Zero values in the update do not clear earlier attempts' data.
func (l *Lambda) Merge(update Lambda) {
	if update.RequestID != "" {
		l.RequestID = update.RequestID
	}
	if update.LogGroupName != "" {
		l.LogGroupName = update.LogGroupName
	}
	if update.LogStreamName != "" {
		l.LogStreamName = update.LogStreamName
	}
	if update.StartTime != 0 {
		l.StartTime = update.StartTime
	}
	if update.EndTime != 0 {
		l.EndTime = update.EndTime
	}
	if update.MemoryLimit != 0 {
		l.MemoryLimit = update.MemoryLimit
	}
	if update.MeasuredDuration != 0 {
		l.MeasuredDuration = update.MeasuredDuration
	}
}

// Meta is the per-domain-attempt record.
type Meta struct {
	Errors    []string  `json:"errors"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
	Duration  float64   `json:"duration,omitempty"`
	Lambda    *Lambda   `json:"lambda,omitempty"`
}

// New returns an empty record with a non-nil error list.
func New() *Meta {
	return &Meta{Errors: []string{}}
}

// AddError appends a formatted error string.
func (m *Meta) AddError(format string, args ...any) {
	m.Errors = append(m.Errors, fmt.Sprintf(format, args...))
}

// EnsureLambda returns the remote sub-record, creating it on first use.
func (m *Meta) EnsureLambda() *Lambda {
	if m.Lambda == nil {
		m.Lambda = &Lambda{}
	}
	return m.Lambda
}
