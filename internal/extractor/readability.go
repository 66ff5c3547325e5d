package extractor

import (
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	nethtml "golang.org/x/net/html"

	"github.com/kestrelcrawl/intentcrawl/internal/mdconvert"
)

// ReadabilityExtractor uses go-shiori/go-readability's port of Firefox
// Reader Mode as an alternate extractor, favoring article-shaped pages
// (news, blogs) over GoqueryExtractor's selector-driven approach.
// Grounded on TelegramDigestBot's linkresolver.ExtractWebContent.
type ReadabilityExtractor struct{}

func NewReadabilityExtractor() *ReadabilityExtractor {
	return &ReadabilityExtractor{}
}

func (e *ReadabilityExtractor) Extract(html, pageURL string) ExtractedContent {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ExtractedContent{URL: pageURL, Success: false, Error: "invalid_url: " + err.Error()}
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return ExtractedContent{URL: pageURL, Success: false, Error: "readability_failed: " + err.Error()}
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return ExtractedContent{URL: pageURL, Success: false, Error: "empty_text"}
	}

	var markdown string
	if node, err := nethtml.Parse(strings.NewReader(article.Content)); err == nil {
		if md, err := mdconvert.ToMarkdown(node); err == nil {
			markdown = md
		}
	}

	return ExtractedContent{
		URL:         pageURL,
		Title:       article.Title,
		Text:        text,
		Markdown:    markdown,
		Description: article.Excerpt,
		Emails:      uniqueMatches(emailPattern, text),
		Phones:      uniqueMatches(phonePattern, text),
		WordCount:   len(strings.Fields(text)),
		Success:     true,
	}
}

var _ ContentExtractor = (*ReadabilityExtractor)(nil)
