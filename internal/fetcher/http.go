package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; intentcrawl/1.0; +https://github.com/kestrelcrawl/intentcrawl)"

// HTTPFetcher retrieves pages with a plain net/http client: no JavaScript
// execution, used whenever --no-selenium is set.
type HTTPFetcher struct {
	client    *http.Client
	UserAgent string
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{}, UserAgent: defaultUserAgent}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string, opts Options) FetchResult {
	start := time.Now()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{URL: url, Success: false, Error: err.Error(), FetchTime: time.Since(start)}
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{URL: url, Success: false, Error: err.Error(), FetchTime: time.Since(start)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{URL: url, Success: false, Error: err.Error(), FetchTime: time.Since(start), StatusCode: resp.StatusCode}
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 400
	result := FetchResult{
		URL:         url,
		FinalURL:    finalURL,
		HTML:        string(body),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FetchTime:   time.Since(start),
		Success:     success,
	}
	if !success {
		result.Error = resp.Status
	}
	return result
}

var _ HTMLFetcher = (*HTTPFetcher)(nil)
