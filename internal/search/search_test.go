package search_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kestrelcrawl/intentcrawl/internal/search"
	"github.com/stretchr/testify/require"
)

func TestDuckDuckGoAPIProviderParsesAbstractAndRelatedTopics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"AbstractURL": "https://example.com/about",
			"Heading": "Example",
			"AbstractText": "An example site",
			"RelatedTopics": [{"FirstURL": "https://example.com/other", "Text": "Other"}]
		}`))
	}))
	defer server.Close()

	p := search.NewDuckDuckGoAPIProvider()
	p.BaseURL = server.URL

	results, err := p.Search(context.Background(), "example", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "https://example.com/about", results[0].URL)
	require.Equal(t, 1, results[0].Rank)
	require.Equal(t, "https://example.com/other", results[1].URL)
}

func TestDuckDuckGoAPIProviderRespectsMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"AbstractURL": "https://example.com/about",
			"RelatedTopics": [
				{"FirstURL": "https://example.com/1", "Text": "1"},
				{"FirstURL": "https://example.com/2", "Text": "2"}
			]
		}`))
	}))
	defer server.Close()

	p := search.NewDuckDuckGoAPIProvider()
	p.BaseURL = server.URL

	results, err := p.Search(context.Background(), "example", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestBingProviderParsesResultList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><ol>
			<li class="b_algo"><h2><a href="https://example.com/a">Title A</a></h2>
			<div class="b_caption"><p>Snippet A</p></div></li>
			<li class="b_algo"><h2><a href="https://example.com/b">Title B</a></h2>
			<div class="b_caption"><p>Snippet B</p></div></li>
		</ol></body></html>`))
	}))
	defer server.Close()

	p := search.NewBingProvider()
	p.BaseURL = server.URL

	results, err := p.Search(context.Background(), "example", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "Title A", results[0].Title)
	require.Equal(t, "Snippet B", results[1].Snippet)
}

func TestDuckDuckGoHTMLProviderParsesResultList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="result">
				<a class="result__a" href="https://example.com/x">Result X</a>
				<a class="result__snippet">Snippet X</a>
			</div>
		</body></html>`))
	}))
	defer server.Close()

	p := search.NewDuckDuckGoHTMLProvider()
	p.BaseURL = server.URL

	results, err := p.Search(context.Background(), "example", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "https://example.com/x", results[0].URL)
}

func TestGoogleProviderParsesResultList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<div class="g"><a href="https://example.com/g1"><h3>Heading</h3></a><span>Snippet G</span></div>
		</body></html>`))
	}))
	defer server.Close()

	p := search.NewGoogleProvider()
	p.BaseURL = server.URL

	results, err := p.Search(context.Background(), "example", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "https://example.com/g1", results[0].URL)
}

func TestProviderSurfacesNonRetryableHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := search.NewBingProvider()
	p.BaseURL = server.URL

	_, err := p.Search(context.Background(), "example", 10)
	require.Error(t, err)
}
