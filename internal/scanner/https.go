package scanner

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/khanhnv2901/domainscan/internal/env"
)

// httpsScanner measures a site's HTTP hardening posture: reachability,
// redirect-to-HTTPS behavior, HSTS and server disclosure.
type httpsScanner struct {
	// Client is swappable for tests; nil builds a default per scan.
	Client *http.Client
}

func init() { Register(&httpsScanner{}) }

func (*httpsScanner) Name() string { return "https" }

func (*httpsScanner) Headers() []string {
	return []string{"Up", "Valid HTTPS", "Redirects To HTTPS", "HSTS", "HSTS Max Age", "Server"}
}

func (s *httpsScanner) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (s *httpsScanner) Scan(ctx context.Context, domain string, e env.Environment, opts Options) (any, error) {
	client := s.client()

	result := map[string]any{
		"up":                 false,
		"valid_https":        false,
		"redirects_to_https": false,
		"hsts":               false,
		"hsts_max_age":       nil,
		"server":             "",
	}

	// Plain HTTP first: does the site upgrade the connection?
	if resp, err := s.get(ctx, client, "http://"+domain); err == nil {
		result["up"] = true
		result["redirects_to_https"] = strings.HasPrefix(resp.Request.URL.String(), "https://")
		resp.Body.Close()
	}

	resp, err := s.get(ctx, client, "https://"+domain)
	if err != nil {
		// HTTP may still have answered above; emit what we have.
		return result, nil
	}
	defer resp.Body.Close()

	result["up"] = true
	result["valid_https"] = true
	result["server"] = resp.Header.Get("Server")

	if hsts := resp.Header.Get("Strict-Transport-Security"); hsts != "" {
		result["hsts"] = true
		if maxAge, ok := parseHSTSMaxAge(hsts); ok {
			result["hsts_max_age"] = maxAge
		}
	}

	return result, nil
}

func (s *httpsScanner) get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "domainscan/https")
	return client.Do(req)
}

func parseHSTSMaxAge(header string) (int, bool) {
	for _, directive := range strings.Split(header, ";") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(strings.ToLower(directive), "max-age=") {
			continue
		}
		value := strings.Trim(directive[len("max-age="):], `"`)
		if n, err := strconv.Atoi(value); err == nil {
			return n, true
		}
	}
	return 0, false
}

func (*httpsScanner) Rows(payload any) [][]any {
	data, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	return [][]any{{
		data["up"],
		data["valid_https"],
		data["redirects_to_https"],
		data["hsts"],
		data["hsts_max_age"],
		data["server"],
	}}
}
