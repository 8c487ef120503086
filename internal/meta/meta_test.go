package meta

import (
	"encoding/json"
	"testing"
)

func TestAddError(t *testing.T) {
	m := New()
	if m.Errors == nil || len(m.Errors) != 0 {
		t.Fatalf("new meta must start with an empty error list, got %v", m.Errors)
	}
	m.AddError("attempt %d failed", 1)
	if len(m.Errors) != 1 || m.Errors[0] != "attempt 1 failed" {
		t.Errorf("errors = %v", m.Errors)
	}
}

func TestEnsureLambda(t *testing.T) {
	m := New()
	l := m.EnsureLambda()
	if l == nil || m.Lambda != l {
		t.Fatal("EnsureLambda must attach the sub-record")
	}
	l.Retries = 2
	if m.EnsureLambda() != l {
		t.Error("EnsureLambda must be idempotent")
	}
	if m.Lambda.Retries != 2 {
		t.Errorf("retries = %d", m.Lambda.Retries)
	}
}

func TestLambdaMerge_KeepsEarlierFields(t *testing.T) {
	l := &Lambda{Retries: 1, RequestID: "req-1", MemoryLimit: 128}
	l.Merge(Lambda{RequestID: "req-2", MeasuredDuration: 1.5})

	if l.RequestID != "req-2" {
		t.Errorf("request id = %q, want the newer attempt's", l.RequestID)
	}
	if l.MemoryLimit != 128 {
		t.Error("zero values in the update must not clear earlier data")
	}
	if l.Retries != 1 {
		t.Error("merge must not touch the retry counter")
	}
	if l.MeasuredDuration != 1.5 {
		t.Errorf("measured duration = %v", l.MeasuredDuration)
	}
}

func TestLambda_DecodesRemoteReport(t *testing.T) {
	raw := `{"request_id":"abc","log_group_name":"/aws/lambda/task_noop","log_stream_name":"s","start_time":1700000000.1,"end_time":1700000001.2,"memory_limit":128,"measured_duration":1.1}`
	var l Lambda
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if l.RequestID != "abc" || l.MemoryLimit != 128 || l.LogGroupName != "/aws/lambda/task_noop" {
		t.Errorf("decoded = %+v", l)
	}
}
