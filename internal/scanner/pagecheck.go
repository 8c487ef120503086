package scanner

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/khanhnv2901/domainscan/internal/env"
)

// pageCheck analyzes the rendered page of a domain: third-party assets and
// basic accessibility signals. It needs a real browser, so the executor
// routes it through the headless bridge.
type pageCheck struct{}

func init() { Register(&pageCheck{}) }

func (*pageCheck) Name() string { return "pagecheck" }

func (*pageCheck) Headers() []string {
	return []string{"Title", "Final URL", "External Scripts", "External Script Hosts", "Images Missing Alt", "Has Lang Attribute"}
}

func (*pageCheck) DefaultWorkers() int { return 4 }

func (*pageCheck) ScanPage(ctx context.Context, domain string, page *Page, e env.Environment, opts Options) (any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, err
	}

	externalHosts := map[string]bool{}
	externalScripts := 0
	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		u, err := url.Parse(src)
		if err != nil || u.Host == "" {
			return
		}
		host := strings.ToLower(u.Host)
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return
		}
		externalScripts++
		externalHosts[host] = true
	})

	// Sorted so repeated runs emit identical rows.
	sorted := make([]string, 0, len(externalHosts))
	for host := range externalHosts {
		sorted = append(sorted, host)
	}
	sort.Strings(sorted)
	hosts := make([]any, len(sorted))
	for i, host := range sorted {
		hosts[i] = host
	}

	missingAlt := 0
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if _, ok := sel.Attr("alt"); !ok {
			missingAlt++
		}
	})

	_, hasLang := doc.Find("html").Attr("lang")

	return map[string]any{
		"title":                 page.Title,
		"final_url":             page.URL,
		"external_scripts":      externalScripts,
		"external_script_hosts": hosts,
		"images_missing_alt":    missingAlt,
		"has_lang":              hasLang,
	}, nil
}

func (*pageCheck) Rows(payload any) [][]any {
	data, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	return [][]any{{
		data["title"],
		data["final_url"],
		data["external_scripts"],
		data["external_script_hosts"],
		data["images_missing_alt"],
		data["has_lang"],
	}}
}
