package mdconvert_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/kestrelcrawl/intentcrawl/internal/mdconvert"
)

func parseFragment(t *testing.T, fragment string) *html.Node {
	t.Helper()
	node, err := html.Parse(strings.NewReader(fragment))
	require.NoError(t, err)
	return node
}

func TestToMarkdownRendersHeadingsAndParagraphs(t *testing.T) {
	node := parseFragment(t, `<h1>Title</h1><p>Some body text.</p>`)

	md, err := mdconvert.ToMarkdown(node)
	require.NoError(t, err)
	require.Contains(t, md, "# Title")
	require.Contains(t, md, "Some body text.")
}

func TestToMarkdownReturnsEmptyForNilNode(t *testing.T) {
	md, err := mdconvert.ToMarkdown(nil)
	require.NoError(t, err)
	require.Empty(t, md)
}
