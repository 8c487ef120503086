package domain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"EXAMPLE.COM", "example.com"},
		{"https://example.com", "example.com"},
		{"http://example.com/path?q=1", "example.com"},
		{"example.com:8443", "example.com"},
		{"example.com.", "example.com"},
		{"  example.com  ", "example.com"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBaseDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"a.b.example.co.uk", "example.co.uk"},
	}

	for _, tc := range cases {
		if got := BaseDomain(tc.in); got != tc.want {
			t.Errorf("BaseDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoad_Literal(t *testing.T) {
	domains, err := Load("Example.com", "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(domains) != 1 || domains[0] != "example.com" {
		t.Errorf("expected [example.com], got %v", domains)
	}
}

func TestLoad_LiteralRejectsGarbage(t *testing.T) {
	if _, err := Load("not a domain", ""); err == nil {
		t.Error("expected an error for a non-domain literal")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.csv")
	content := "Domain\nexample.com\nwww.example.org,extra\nexample.com\n\ntest.example.gov\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	domains, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"example.com", "www.example.org", "test.example.gov"}
	if len(domains) != len(want) {
		t.Fatalf("expected %d domains, got %v", len(want), domains)
	}
	for i := range want {
		if domains[i] != want[i] {
			t.Errorf("domain %d: expected %q, got %q", i, want[i], domains[i])
		}
	}
}

func TestLoad_SuffixFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.csv")
	content := "example.com\ntest.example.gov\nother.example.gov\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	domains, err := Load(path, ".gov")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(domains) != 2 {
		t.Fatalf("expected 2 .gov domains, got %v", domains)
	}
	for _, d := range domains {
		if d[len(d)-4:] != ".gov" {
			t.Errorf("domain %q should have been filtered out", d)
		}
	}
}
