package fetcher

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeFetcher retrieves pages through a headless Chrome instance via
// chromedp, for sites whose content only appears after JavaScript runs.
// Grounded on erndmrc-spider2's renderer: a shared allocator context with
// a fixed flag set, a fresh tab context per navigation.
type ChromeFetcher struct {
	allocatorCtx context.Context
	cancel       context.CancelFunc
	headless     bool
}

// NewChromeFetcher creates the shared browser allocator. Call Close when
// the fetcher is no longer needed.
func NewChromeFetcher(headless bool) *ChromeFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.UserAgent(defaultUserAgent),
	)

	allocatorCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeFetcher{allocatorCtx: allocatorCtx, cancel: cancel, headless: headless}
}

func (f *ChromeFetcher) Close() {
	f.cancel()
}

func (f *ChromeFetcher) Fetch(ctx context.Context, url string, opts Options) FetchResult {
	start := time.Now()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	tabCtx, cancelTab := chromedp.NewContext(f.allocatorCtx)
	defer cancelTab()

	timeoutCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	// chromedp's own context tree is rooted at the shared allocator, not
	// the caller's ctx, so a Ctrl-C / run-timeout cancellation on ctx
	// would otherwise never reach an in-flight Navigate. Watch it and
	// cancel the tab explicitly (spec §5: cancellation honoured "at the
	// return of each blocking call").
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelTimeout()
		case <-done:
		}
	}()

	var html, finalURL string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return FetchResult{URL: url, Success: false, Error: err.Error(), FetchTime: time.Since(start)}
	}

	return FetchResult{
		URL:         url,
		FinalURL:    finalURL,
		HTML:        html,
		StatusCode:  200,
		ContentType: "text/html",
		FetchTime:   time.Since(start),
		Success:     true,
	}
}

var _ HTMLFetcher = (*ChromeFetcher)(nil)
