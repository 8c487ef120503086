package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/khanhnv2901/domainscan/internal/scanner"
)

// Browser drives a headless Chrome through chromedp and satisfies the
// Headless bridge contract. One allocator is shared; each Fetch runs in its
// own tab so concurrent domain tasks do not interfere.
type Browser struct {
	Timeout time.Duration

	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewBrowser starts a shared Chrome allocator.
func NewBrowser(timeout time.Duration) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("no-first-run", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Browser{Timeout: timeout, allocCtx: allocCtx, cancel: cancel}
}

// Fetch renders https://<domain> and returns the final URL, title and HTML.
func (b *Browser) Fetch(ctx context.Context, domain string) (*scanner.Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	// Honor caller cancellation without tying tab lifetime to it.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	page := &scanner.Page{}
	err := chromedp.Run(runCtx,
		chromedp.Navigate("https://"+domain),
		chromedp.Location(&page.URL),
		chromedp.Title(&page.Title),
		chromedp.OuterHTML("html", &page.HTML),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", domain, err)
	}
	return page, nil
}

// Close tears down the shared allocator.
func (b *Browser) Close() {
	b.cancel()
}
