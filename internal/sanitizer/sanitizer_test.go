package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/kestrelcrawl/intentcrawl/internal/sanitizer"
)

func TestCleanRemovesEmptyLeaves(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="root"><p>Real content here.</p><div class="wrapper"><span></span></div></div>`))
	require.NoError(t, err)

	root := doc.Find("#root")
	sanitizer.Clean(root)

	require.Equal(t, 0, root.Find(".wrapper").Length())
	require.Equal(t, 1, root.Find("p").Length())
}

func TestCleanNormalizesSkippedHeadingLevels(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="root"><h1>Title</h1><h4>Skipped</h4><h2>Back down</h2></div>`))
	require.NoError(t, err)

	root := doc.Find("#root")
	sanitizer.Clean(root)

	levels := []string{}
	root.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		levels = append(levels, goquery.NodeName(s))
	})
	require.Equal(t, []string{"h1", "h2", "h2"}, levels)
}

func TestCleanPreservesImageOnlyLeaves(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="root"><p>Text</p><div class="figure"><img src="a.png"></div></div>`))
	require.NoError(t, err)

	root := doc.Find("#root")
	sanitizer.Clean(root)

	require.Equal(t, 1, root.Find(".figure").Length())
}
