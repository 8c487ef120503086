package scanner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/khanhnv2901/domainscan/internal/env"
)

func TestParseHSTSMaxAge(t *testing.T) {
	cases := []struct {
		header string
		want   int
		ok     bool
	}{
		{"max-age=31536000", 31536000, true},
		{"max-age=31536000; includeSubDomains; preload", 31536000, true},
		{"includeSubDomains; max-age=600", 600, true},
		{`max-age="600"`, 600, true},
		{"includeSubDomains", 0, false},
		{"max-age=abc", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseHSTSMaxAge(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseHSTSMaxAge(%q) = (%d, %v), want (%d, %v)", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHTTPSScanner_HSTS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Server", "testserver")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "https://")
	sc := &httpsScanner{Client: server.Client()}

	payload, err := sc.Scan(context.Background(), host, env.Environment{}, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	data := payload.(map[string]any)
	if data["valid_https"] != true {
		t.Errorf("valid_https = %v", data["valid_https"])
	}
	if data["hsts"] != true {
		t.Errorf("hsts = %v", data["hsts"])
	}
	if data["hsts_max_age"] != 31536000 {
		t.Errorf("hsts_max_age = %v", data["hsts_max_age"])
	}
	if data["server"] != "testserver" {
		t.Errorf("server = %v", data["server"])
	}
}

func TestHTTPSScanner_DownIsStillAPayload(t *testing.T) {
	sc := &httpsScanner{Client: &http.Client{Timeout: 200 * time.Millisecond}}

	payload, err := sc.Scan(context.Background(), "localhost:1", env.Environment{}, nil)
	if err != nil {
		t.Fatalf("an unreachable site is a result, not an error: %v", err)
	}
	data := payload.(map[string]any)
	if data["up"] != false || data["valid_https"] != false {
		t.Errorf("unexpected payload for a dead host: %v", data)
	}
}

func TestHTTPSScanner_RowWidthMatchesHeaders(t *testing.T) {
	sc := &httpsScanner{}
	payload := map[string]any{
		"up": true, "valid_https": true, "redirects_to_https": true,
		"hsts": true, "hsts_max_age": float64(600), "server": "nginx",
	}
	rows := sc.Rows(payload)
	if len(rows) != 1 || len(rows[0]) != len(sc.Headers()) {
		t.Fatalf("rows shape %v does not match headers %v", rows, sc.Headers())
	}
}
