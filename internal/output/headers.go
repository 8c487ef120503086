package output

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/khanhnv2901/domainscan/internal/meta"
)

// Column layout of every scanner table: prefix, scanner columns, then the
// local and remote meta columns when meta collection is on.
var (
	PrefixHeaders = []string{"Domain", "Base Domain"}

	LocalHeaders = []string{"Local Errors", "Local Start Time", "Local End Time", "Local Duration"}

	RemoteHeaders = []string{"Request ID", "Log Group Name", "Log Stream Name", "Start Time", "End Time", "Memory Limit", "Measured Duration"}
)

// HeaderRow composes the full header for one scanner table.
func HeaderRow(scannerHeaders []string, withMeta, withRemote bool) []string {
	row := append([]string{}, PrefixHeaders...)
	row = append(row, scannerHeaders...)
	if withMeta {
		row = append(row, LocalHeaders...)
		if withRemote {
			row = append(row, RemoteHeaders...)
		}
	}
	return row
}

// FormatCell renders a JSON-normalized payload value as a CSV cell.
// Booleans render Python-style (True/False) to keep tables comparable with
// the serverless side, which emits the same convention.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatCell(item)
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// MetaCells renders the local (and optionally remote) meta columns for one
// row. A nil record yields empty cells of the right width.
func MetaCells(m *meta.Meta, withRemote bool) []string {
	width := len(LocalHeaders)
	if withRemote {
		width += len(RemoteHeaders)
	}
	if m == nil {
		return make([]string, width)
	}

	cells := []string{
		strings.Join(m.Errors, "; "),
		formatTime(m.StartTime),
		formatTime(m.EndTime),
		FormatCell(m.Duration),
	}
	if withRemote {
		l := m.Lambda
		if l == nil {
			l = &meta.Lambda{}
		}
		cells = append(cells,
			l.RequestID,
			l.LogGroupName,
			l.LogStreamName,
			formatEpoch(l.StartTime),
			formatEpoch(l.EndTime),
			formatInt(l.MemoryLimit),
			formatEpoch(l.MeasuredDuration),
		)
	}
	return cells
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatEpoch(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
