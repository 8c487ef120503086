package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/khanhnv2901/domainscan/internal/meta"
)

func TestHeaderRow(t *testing.T) {
	scannerHeaders := []string{"OK"}

	cases := []struct {
		name       string
		withMeta   bool
		withRemote bool
		want       []string
	}{
		{
			name: "bare",
			want: []string{"Domain", "Base Domain", "OK"},
		},
		{
			name:     "meta",
			withMeta: true,
			want: []string{"Domain", "Base Domain", "OK",
				"Local Errors", "Local Start Time", "Local End Time", "Local Duration"},
		},
		{
			name:       "meta and remote",
			withMeta:   true,
			withRemote: true,
			want: []string{"Domain", "Base Domain", "OK",
				"Local Errors", "Local Start Time", "Local End Time", "Local Duration",
				"Request ID", "Log Group Name", "Log Stream Name", "Start Time", "End Time", "Memory Limit", "Measured Duration"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HeaderRow(scannerHeaders, tc.withMeta, tc.withRemote)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("HeaderRow = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFormatCell(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{true, "True"},
		{false, "False"},
		{float64(1), "1"},
		{float64(12.5), "12.5"},
		{42, "42"},
		{[]any{"a", "b"}, "a, b"},
		{[]any{true, float64(2)}, "True, 2"},
	}

	for _, tc := range cases {
		if got := FormatCell(tc.in); got != tc.want {
			t.Errorf("FormatCell(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatCell_Map(t *testing.T) {
	got := FormatCell(map[string]any{"k": "v"})
	var decoded map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("map cells must render as JSON, got %q", got)
	}
	if decoded["k"] != "v" {
		t.Errorf("map cell lost data: %q", got)
	}
}

func TestMetaCells(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &meta.Meta{
		Errors:    []string{"one", "two"},
		StartTime: start,
		EndTime:   start.Add(2 * time.Second),
		Duration:  2,
		Lambda: &meta.Lambda{
			Retries:          1,
			RequestID:        "req-1",
			LogGroupName:     "/aws/lambda/task_noop",
			LogStreamName:    "stream",
			StartTime:        1700000000.5,
			EndTime:          1700000002.5,
			MemoryLimit:      128,
			MeasuredDuration: 1.25,
		},
	}

	local := MetaCells(m, false)
	if len(local) != len(LocalHeaders) {
		t.Fatalf("expected %d local cells, got %d", len(LocalHeaders), len(local))
	}
	if local[0] != "one; two" {
		t.Errorf("errors cell = %q", local[0])
	}
	if local[1] != "2026-03-01T10:00:00Z" {
		t.Errorf("start time cell = %q", local[1])
	}
	if local[3] != "2" {
		t.Errorf("duration cell = %q", local[3])
	}

	full := MetaCells(m, true)
	if len(full) != len(LocalHeaders)+len(RemoteHeaders) {
		t.Fatalf("expected %d cells, got %d", len(LocalHeaders)+len(RemoteHeaders), len(full))
	}
	if full[4] != "req-1" || full[5] != "/aws/lambda/task_noop" {
		t.Errorf("remote cells misplaced: %v", full[4:])
	}
	if full[9] != "128" || full[10] != "1.25" {
		t.Errorf("memory/duration cells misplaced: %v", full[4:])
	}
}

func TestMetaCells_NilMeta(t *testing.T) {
	cells := MetaCells(nil, true)
	if len(cells) != len(LocalHeaders)+len(RemoteHeaders) {
		t.Fatalf("expected full width for nil meta, got %d", len(cells))
	}
	for i, c := range cells {
		if c != "" {
			t.Errorf("cell %d should be empty, got %q", i, c)
		}
	}
}

func TestTable_AppendAndPad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noop.csv")
	table, err := OpenTable(path, []string{"Domain", "Base Domain", "OK"})
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}

	if err := table.Append([]string{"example.com", "example.com", "True"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := table.Append([]string{"short.com"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	header, rows, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(header) != 3 {
		t.Errorf("header width = %d", len(header))
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(header) {
			t.Errorf("row %d width %d, want %d", i, len(row), len(header))
		}
	}
}

func TestTable_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noop.csv")
	table, err := OpenTable(path, []string{"Domain", "Base Domain"})
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = table.Append([]string{"example.com", "example.com"})
		}()
	}
	wg.Wait()
	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, rows, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(rows) != 50 {
		t.Errorf("expected 50 intact rows, got %d", len(rows))
	}
}

func TestOpenTable_TruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noop.csv")
	if err := os.WriteFile(path, []byte("old,content\n1,2\n"), 0o644); err != nil {
		t.Fatalf("seed old table: %v", err)
	}

	table, err := OpenTable(path, []string{"Domain"})
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}
	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	header, rows, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(header) != 1 || header[0] != "Domain" || len(rows) != 0 {
		t.Errorf("previous content survived: header=%v rows=%v", header, rows)
	}
}

func TestSortByDomain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noop.csv")
	table, err := OpenTable(path, []string{"Domain", "Base Domain"})
	if err != nil {
		t.Fatalf("OpenTable failed: %v", err)
	}
	for _, d := range []string{"zeta.com", "alpha.com", "mid.com"} {
		if err := table.Append([]string{d, d}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := SortByDomain(path); err != nil {
		t.Fatalf("SortByDomain failed: %v", err)
	}

	_, rows, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	want := []string{"alpha.com", "mid.com", "zeta.com"}
	for i, row := range rows {
		if row[0] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], row[0])
		}
	}
}

func TestWriteRunMetadata(t *testing.T) {
	dir := t.TempDir()
	rm := RunMetadata{
		StartTime: "2026-03-01T10:00:00Z",
		EndTime:   "2026-03-01T10:05:00Z",
		Duration:  300,
		Durations: map[string]ScannerTiming{
			"noop": {Start: "2026-03-01T10:00:00Z", End: "2026-03-01T10:01:00Z", Duration: 60},
		},
		Command:  "domainscan scan example.com --scan=noop",
		ScanUUID: "uuid-1",
	}

	if err := WriteRunMetadata(dir, rm); err != nil {
		t.Fatalf("WriteRunMetadata failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		t.Fatalf("read meta.json: %v", err)
	}

	var decoded RunMetadata
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("meta.json is not valid JSON: %v", err)
	}
	if decoded.ScanUUID != "uuid-1" || decoded.Durations["noop"].Duration != 60 {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
	if !strings.Contains(string(raw), "scan_uuid") {
		t.Errorf("expected snake_case keys in %s", raw)
	}
}

func TestReplaceTable_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.csv")
	if err := ReplaceTable(path, []string{"A"}, [][]string{{"1"}}); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if len(records) != 2 || records[1][0] != "1" {
		t.Errorf("unexpected table contents: %v", records)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}
