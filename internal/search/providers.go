package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kestrelcrawl/intentcrawl/pkg/failure"
	"github.com/kestrelcrawl/intentcrawl/pkg/retry"
	"github.com/kestrelcrawl/intentcrawl/pkg/timeutil"
)

const userAgent = "Mozilla/5.0 (compatible; intentcrawl/1.0)"

func defaultRetryParam() retry.RetryParam {
	backoff := timeutil.NewBackoffParam(200*time.Millisecond, 2.0, 2*time.Second)
	return retry.NewRetryParam(200*time.Millisecond, 100*time.Millisecond, 1, 3, backoff)
}

// fetchBody performs one HTTP GET, wrapped in a transport-level retry per
// provider (spec §9's "retries are the provider's concern").
func fetchBody(ctx context.Context, client *http.Client, rawURL string, rp retry.RetryParam) ([]byte, error) {
	result := retry.Retry(rp, func() ([]byte, failure.ClassifiedError) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, failure.New(failure.KindFetchFailed, false, err.Error())
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			return nil, failure.New(failure.KindFetchFailed, true, err.Error())
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return nil, failure.New(failure.KindFetchFailed, true, fmt.Sprintf("status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, failure.New(failure.KindFetchFailed, false, fmt.Sprintf("status %d", resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, failure.New(failure.KindFetchFailed, true, err.Error())
		}
		return body, nil
	})

	if !result.Succeeded() {
		return nil, result.Err()
	}
	return result.Value(), nil
}

func clampMax(results []Result, maxResults int) []Result {
	if maxResults > 0 && len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}

// DuckDuckGoAPIProvider uses DuckDuckGo's Instant Answer JSON API, the
// cheapest and most reliable of the four per spec §4.4's fallback order.
// BaseURL defaults to the real API host; tests override it to point at a
// local fixture server.
type DuckDuckGoAPIProvider struct {
	client  *http.Client
	BaseURL string
}

func NewDuckDuckGoAPIProvider() *DuckDuckGoAPIProvider {
	return &DuckDuckGoAPIProvider{client: &http.Client{Timeout: 10 * time.Second}, BaseURL: "https://api.duckduckgo.com/"}
}

func (p *DuckDuckGoAPIProvider) Name() string { return "duckduckgo_api" }

type ddgAPIResponse struct {
	AbstractURL   string `json:"AbstractURL"`
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	RelatedTopics []struct {
		FirstURL string `json:"FirstURL"`
		Text     string `json:"Text"`
	} `json:"RelatedTopics"`
}

func (p *DuckDuckGoAPIProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	endpoint := p.BaseURL + "?" + url.Values{
		"q":              {query},
		"format":         {"json"},
		"no_html":        {"1"},
		"skip_disambig":  {"1"},
	}.Encode()

	body, err := fetchBody(ctx, p.client, endpoint, defaultRetryParam())
	if err != nil {
		return nil, err
	}

	var parsed ddgAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("duckduckgo_api: decode response: %w", err)
	}

	var results []Result
	rank := 1
	if parsed.AbstractURL != "" {
		results = append(results, Result{URL: parsed.AbstractURL, Title: parsed.Heading, Snippet: parsed.AbstractText, Rank: rank})
		rank++
	}
	for _, topic := range parsed.RelatedTopics {
		if topic.FirstURL == "" {
			continue
		}
		results = append(results, Result{URL: topic.FirstURL, Title: topic.Text, Snippet: topic.Text, Rank: rank})
		rank++
	}

	return clampMax(results, maxResults), nil
}

// BingProvider scrapes Bing's HTML result page with goquery.
type BingProvider struct {
	client  *http.Client
	BaseURL string
}

func NewBingProvider() *BingProvider {
	return &BingProvider{client: &http.Client{Timeout: 10 * time.Second}, BaseURL: "https://www.bing.com/search"}
}

func (p *BingProvider) Name() string { return "bing" }

func (p *BingProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	endpoint := p.BaseURL + "?" + url.Values{"q": {query}}.Encode()

	body, err := fetchBody(ctx, p.client, endpoint, defaultRetryParam())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("bing: parse html: %w", err)
	}

	var results []Result
	rank := 1
	doc.Find("li.b_algo").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("h2 a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}
		title := strings.TrimSpace(link.Text())
		snippet := strings.TrimSpace(sel.Find(".b_caption p").First().Text())

		results = append(results, Result{URL: href, Title: title, Snippet: snippet, Rank: rank})
		rank++
		return maxResults <= 0 || rank <= maxResults
	})

	return clampMax(results, maxResults), nil
}

// DuckDuckGoHTMLProvider scrapes DuckDuckGo's no-JS HTML endpoint, used
// when the JSON API yields nothing useful.
type DuckDuckGoHTMLProvider struct {
	client  *http.Client
	BaseURL string
}

func NewDuckDuckGoHTMLProvider() *DuckDuckGoHTMLProvider {
	return &DuckDuckGoHTMLProvider{client: &http.Client{Timeout: 10 * time.Second}, BaseURL: "https://html.duckduckgo.com/html/"}
}

func (p *DuckDuckGoHTMLProvider) Name() string { return "duckduckgo_html" }

func (p *DuckDuckGoHTMLProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	endpoint := p.BaseURL + "?" + url.Values{"q": {query}}.Encode()

	body, err := fetchBody(ctx, p.client, endpoint, defaultRetryParam())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo_html: parse html: %w", err)
	}

	var results []Result
	rank := 1
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return true
		}
		title := strings.TrimSpace(link.Text())
		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())

		results = append(results, Result{URL: href, Title: title, Snippet: snippet, Rank: rank})
		rank++
		return maxResults <= 0 || rank <= maxResults
	})

	return clampMax(results, maxResults), nil
}

// GoogleProvider scrapes Google's HTML result page, the last resort in
// spec §4.4's fallback order.
type GoogleProvider struct {
	client  *http.Client
	BaseURL string
}

func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{client: &http.Client{Timeout: 10 * time.Second}, BaseURL: "https://www.google.com/search"}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	endpoint := p.BaseURL + "?" + url.Values{"q": {query}, "num": {"20"}}.Encode()

	body, err := fetchBody(ctx, p.client, endpoint, defaultRetryParam())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("google: parse html: %w", err)
	}

	var results []Result
	rank := 1
	doc.Find("div.g").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a").First()
		href, ok := link.Attr("href")
		if !ok || href == "" || !strings.HasPrefix(href, "http") {
			return true
		}
		title := strings.TrimSpace(sel.Find("h3").First().Text())
		snippet := strings.TrimSpace(sel.Find("div[data-sncf], span").Last().Text())

		results = append(results, Result{URL: href, Title: title, Snippet: snippet, Rank: rank})
		rank++
		return maxResults <= 0 || rank <= maxResults
	})

	return clampMax(results, maxResults), nil
}
