// Package mdconvert renders a sanitized content node to GitHub-flavored
// Markdown. Grounded on the teacher's StrictConversionRule: the same
// converter/plugin stack (base, commonmark, table), repurposed here as an
// auxiliary rendering attached to the processed JSON artifact rather than
// the crawl's terminal output format (the store always writes JSON).
package mdconvert

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// ToMarkdown converts node (the extractor's isolated content node) to
// Markdown. A nil node yields ("", nil) and a converter error ("", err);
// callers treat either as "no markdown available" rather than a page failure, since
// the JSON artifact with the plain-text body is still written either way.
func ToMarkdown(node *html.Node) (string, error) {
	if node == nil {
		return "", nil
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	md, err := conv.ConvertNode(node)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(md)), nil
}
