// Package domain handles scan input: domain normalization, base domain
// derivation, and reading domain lists from files or literals.
package domain

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Normalize strips scheme, path, port and trailing dot, and lowercases the
// host so cache keys and output rows are stable across input styles.
func Normalize(raw string) string {
	d := strings.TrimSpace(strings.ToLower(raw))
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.Index(d, ":"); i >= 0 {
		d = d[:i]
	}
	return strings.TrimSuffix(d, ".")
}

// BaseDomain returns the registrable domain (eTLD+1) for a host. Hosts the
// public suffix list cannot classify come back unchanged.
func BaseDomain(host string) string {
	base, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return base
}
