package scanner

import (
	"context"

	"github.com/khanhnv2901/domainscan/internal/env"
)

// noop does nothing time consuming or destructive, but exercises every
// dispatcher hook: one-time init, per-domain init, scan and row conversion.
type noop struct{}

func init() { Register(&noop{}) }

func (*noop) Name() string { return "noop" }

func (*noop) Headers() []string { return []string{"Completed", "Constant", "Variable"} }

func (*noop) DefaultWorkers() int { return 2 }

func (*noop) Init(e env.Environment, opts Options) (map[string]any, error) {
	return map[string]any{"constant": 12345}, nil
}

func (*noop) InitDomain(domain string, e env.Environment, opts Options) (map[string]any, error) {
	return map[string]any{"variable": domain}, nil
}

func (*noop) Scan(ctx context.Context, domain string, e env.Environment, opts Options) (any, error) {
	return map[string]any{
		"complete": true,
		"constant": e["constant"],
		"variable": e["variable"],
	}, nil
}

func (*noop) Rows(payload any) [][]any {
	data, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	return [][]any{{data["complete"], data["constant"], data["variable"]}}
}
