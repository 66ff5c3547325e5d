package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kestrelcrawl/intentcrawl/internal/mdconvert"
	"github.com/kestrelcrawl/intentcrawl/internal/sanitizer"
	"github.com/kestrelcrawl/intentcrawl/internal/urlkey"
)

// knownContentSelectors are common documentation/article container
// selectors, tried after the semantic-element layer. Generalized from the
// teacher's extractKnownDocContainer selector table.
var knownContentSelectors = []string{
	"#content", "#main-content", ".content", ".main-content",
	".post-content", ".article-content", ".page-content", "#article",
}

var chromeSelectors = []string{"nav", "header", "footer", "aside", "script", "style", "noscript", ".sidebar", ".cookie-banner"}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
var phonePattern = regexp.MustCompile(`\+?\d[\d\-\.\s()]{7,}\d`)

// GoqueryExtractor isolates a page's main content with a three-layer
// heuristic (spec §4.6's extract stage), generalized from the teacher's
// DomExtractor: semantic containers (main, article, [role=main]), then
// known selectors, then the whole body with chrome stripped as a last
// resort.
type GoqueryExtractor struct {
	customSelectors []string
}

func NewGoqueryExtractor(customSelectors ...string) *GoqueryExtractor {
	return &GoqueryExtractor{customSelectors: customSelectors}
}

func (e *GoqueryExtractor) Extract(html, pageURL string) ExtractedContent {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ExtractedContent{URL: pageURL, Success: false, Error: "parse_failed: " + err.Error()}
	}

	content := e.selectContentNode(doc)
	if content == nil {
		return ExtractedContent{URL: pageURL, Success: false, Error: "no_meaningful_content_container_found"}
	}

	stripChrome(content)
	sanitizer.Clean(content)

	text := strings.TrimSpace(collapseWhitespace(content.Text()))
	if text == "" {
		return ExtractedContent{URL: pageURL, Success: false, Error: "empty_text"}
	}

	var markdown string
	if len(content.Nodes) > 0 {
		if md, err := mdconvert.ToMarkdown(content.Nodes[0]); err == nil {
			markdown = md
		}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	description, _ := doc.Find(`meta[name="description"]`).Attr("content")

	links := extractLinks(doc, pageURL)

	return ExtractedContent{
		URL:         pageURL,
		Title:       title,
		Text:        text,
		Markdown:    markdown,
		Description: description,
		Links:       links,
		Emails:      uniqueMatches(emailPattern, text),
		Phones:      uniqueMatches(phonePattern, text),
		WordCount:   len(strings.Fields(text)),
		Success:     true,
	}
}

func (e *GoqueryExtractor) selectContentNode(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"main", "article", `[role="main"]`} {
		if found := doc.Find(sel).First(); found.Length() > 0 && isMeaningful(found) {
			return found
		}
	}

	for _, sel := range append(append([]string{}, knownContentSelectors...), e.customSelectors...) {
		if found := doc.Find(sel).First(); found.Length() > 0 && isMeaningful(found) {
			return found
		}
	}

	body := doc.Find("body").First()
	if body.Length() > 0 {
		return body
	}
	return nil
}

func isMeaningful(sel *goquery.Selection) bool {
	return len(strings.TrimSpace(sel.Text())) > 50
}

func stripChrome(sel *goquery.Selection) {
	for _, selector := range chromeSelectors {
		sel.Find(selector).Remove()
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func extractLinks(doc *goquery.Document, pageURL string) []Link {
	base, _ := url.Parse(pageURL)

	var links []Link
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		canonical, ok := urlkey.Normalise(href, base)
		if !ok || seen[canonical] {
			return
		}
		seen[canonical] = true

		isInternal := false
		if base != nil {
			if parsed, err := url.Parse(canonical); err == nil {
				isInternal = parsed.Hostname() == base.Hostname()
			}
		}

		links = append(links, Link{
			URL:        canonical,
			Text:       strings.TrimSpace(sel.Text()),
			IsInternal: isInternal,
		})
	})

	return links
}

func uniqueMatches(re *regexp.Regexp, text string) []string {
	matches := re.FindAllString(text, -1)
	if matches == nil {
		return nil
	}

	seen := make(map[string]bool)
	var unique []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		unique = append(unique, m)
	}
	return unique
}

var _ ContentExtractor = (*GoqueryExtractor)(nil)
