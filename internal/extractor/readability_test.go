package extractor_test

import (
	"testing"

	"github.com/kestrelcrawl/intentcrawl/internal/extractor"
	"github.com/stretchr/testify/require"
)

func TestReadabilityExtractorParsesArticle(t *testing.T) {
	page := `<html><head><title>News</title></head><body>
	<article><h1>Big Announcement</h1>
	<p>Today we announce a major update to our admissions process that affects every applicant starting next term, with changes to deadlines and required documents.</p>
	</article></body></html>`

	e := extractor.NewReadabilityExtractor()
	result := e.Extract(page, "https://ex.com/news/announcement")

	require.True(t, result.Success)
	require.Contains(t, result.Text, "admissions process")
}

func TestReadabilityExtractorFailsOnInvalidURL(t *testing.T) {
	e := extractor.NewReadabilityExtractor()
	result := e.Extract("<html></html>", "://not-a-url")

	require.False(t, result.Success)
}
