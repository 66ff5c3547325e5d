// Package fetcher is the HTMLFetcher capability (spec §6): retrieving a
// page's HTML either over plain HTTP or through a headless browser, behind
// one interface the pipeline depends on.
package fetcher

import (
	"context"
	"time"
)

// FetchResult is the capability's result envelope (spec §6).
type FetchResult struct {
	URL         string
	FinalURL    string
	HTML        string
	StatusCode  int
	ContentType string
	FetchTime   time.Duration
	Success     bool
	Error       string
}

// Options configures one fetch call.
type Options struct {
	Timeout time.Duration
}

// HTMLFetcher is the capability interface the pipeline consumes; concrete
// fetchers are plugged in at construction (spec §9).
type HTMLFetcher interface {
	Fetch(ctx context.Context, url string, opts Options) FetchResult
}
