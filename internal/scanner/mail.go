package scanner

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/khanhnv2901/domainscan/internal/env"
)

// mailScanner checks a domain's mail posture: MX presence, SPF and DMARC
// policy records, and whether mail is hosted by a recognized provider.
//
// The provider table is loaded once per run into the fast cache: shared by
// reference across every task and never shipped to the remote executor,
// which is why this scanner pins itself to the local executor.
type mailScanner struct {
	// Resolver is swappable for tests.
	Resolver *net.Resolver
}

func init() { Register(&mailScanner{}) }

// MX host suffixes of widely used hosted-mail providers.
var knownMailProviders = []string{
	".google.com",
	".googlemail.com",
	".outlook.com",
	".protection.outlook.com",
	".mail.protection.outlook.com",
	".zoho.com",
	".yandex.net",
	".protonmail.ch",
	".mailgun.org",
	".messagingengine.com",
}

func (*mailScanner) Name() string { return "mail" }

func (*mailScanner) Headers() []string {
	return []string{"MX Records", "Has MX", "SPF", "DMARC", "Hosted Provider"}
}

func (*mailScanner) DefaultWorkers() int { return 25 }

// UseLambda pins the scanner to the local executor: the provider table in
// the fast cache does not travel.
func (*mailScanner) UseLambda() bool { return false }

func (*mailScanner) Init(e env.Environment, opts Options) (map[string]any, error) {
	providers := make(map[string]bool, len(knownMailProviders))
	for _, suffix := range knownMailProviders {
		providers[suffix] = true
	}
	return map[string]any{env.KeyFastCache: providers}, nil
}

func (m *mailScanner) resolver() *net.Resolver {
	if m.Resolver != nil {
		return m.Resolver
	}
	return &net.Resolver{PreferGo: true}
}

func (m *mailScanner) Scan(ctx context.Context, domain string, e env.Environment, opts Options) (any, error) {
	resolver := m.resolver()
	lookupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	result := map[string]any{
		"mx_records":      []any{},
		"has_mx":          false,
		"spf":             false,
		"dmarc":           false,
		"hosted_provider": false,
	}

	providers, _ := e[env.KeyFastCache].(map[string]bool)

	if mxs, err := resolver.LookupMX(lookupCtx, domain); err == nil && len(mxs) > 0 {
		hosts := make([]any, 0, len(mxs))
		hosted := false
		for _, mx := range mxs {
			host := strings.TrimSuffix(strings.ToLower(mx.Host), ".")
			hosts = append(hosts, host)
			for suffix := range providers {
				if strings.HasSuffix(host, suffix) {
					hosted = true
				}
			}
		}
		result["mx_records"] = hosts
		result["has_mx"] = true
		result["hosted_provider"] = hosted
	}

	if txts, err := resolver.LookupTXT(lookupCtx, domain); err == nil {
		for _, txt := range txts {
			if strings.HasPrefix(strings.ToLower(txt), "v=spf1") {
				result["spf"] = true
				break
			}
		}
	}

	if txts, err := resolver.LookupTXT(lookupCtx, "_dmarc."+domain); err == nil {
		for _, txt := range txts {
			if strings.HasPrefix(strings.ToLower(txt), "v=dmarc1") {
				result["dmarc"] = true
				break
			}
		}
	}

	return result, nil
}

func (*mailScanner) Rows(payload any) [][]any {
	data, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	return [][]any{{
		data["mx_records"],
		data["has_mx"],
		data["spf"],
		data["dmarc"],
		data["hosted_provider"],
	}}
}
