// Package pipeline is the per-URL page pipeline (C6): fetch, extract, a
// cheap relevance gate, deep analysis, and discovery, run as five ordered
// stages against one FrontierItem and producing one PageResult plus zero
// or more pushes back into the frontier.
package pipeline

import (
	"context"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/kestrelcrawl/intentcrawl/internal/analysis"
	"github.com/kestrelcrawl/intentcrawl/internal/extractor"
	"github.com/kestrelcrawl/intentcrawl/internal/fetcher"
	"github.com/kestrelcrawl/intentcrawl/internal/frontier"
	"github.com/kestrelcrawl/intentcrawl/internal/intent"
	"github.com/kestrelcrawl/intentcrawl/internal/metrics"
	"github.com/kestrelcrawl/intentcrawl/internal/store"
	"github.com/kestrelcrawl/intentcrawl/pkg/failure"
	"github.com/rs/zerolog"
)

// PageResult is the outcome of one pipeline invocation.
type PageResult struct {
	URL            string            `json:"url"`
	Title          string            `json:"title"`
	FetchTime      time.Duration     `json:"fetch_time"`
	AnalysisTime   time.Duration     `json:"analysis_time"`
	RelevanceScore float64           `json:"relevance_score"`
	KeyFindings    []string          `json:"key_findings"`
	ExtractedData  map[string]string `json:"extracted_data"`
	Summary        string            `json:"summary"`
	DiscoveredURLs []string          `json:"discovered_urls"`
	Success        bool              `json:"success"`
	ErrorKind      failure.Kind      `json:"error_kind,omitempty"`
}

// Options configures one pipeline's behaviour.
type Options struct {
	FetchTimeout       time.Duration
	SaveRawHTML        bool
	QuickGateThreshold float64
	MaxDepth           int
	ExplorationLinks   int
}

// DefaultOptions matches spec §6's documented defaults.
func DefaultOptions() Options {
	return Options{
		FetchTimeout:       20 * time.Second,
		SaveRawHTML:        true,
		QuickGateThreshold: 0.2,
		MaxDepth:           3,
		ExplorationLinks:   5,
	}
}

// Pipeline wires the four external capabilities plus the frontier and
// store together; it holds no per-page state between Run calls.
type Pipeline struct {
	fetcher   fetcher.HTMLFetcher
	extractor extractor.ContentExtractor
	analyser  *analysis.Analyser
	store     *store.Store
	frontier  *frontier.Frontier
	metrics   *metrics.Registry
	logger    zerolog.Logger
	opts      Options
	rng       *rand.Rand
}

func New(f fetcher.HTMLFetcher, e extractor.ContentExtractor, a *analysis.Analyser, s *store.Store, fr *frontier.Frontier, m *metrics.Registry, logger zerolog.Logger, opts Options) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		extractor: e,
		analyser:  a,
		store:     s,
		frontier:  fr,
		metrics:   m,
		logger:    logger.With().Str("component", "pipeline").Logger(),
		opts:      opts,
		rng:       rand.New(rand.NewSource(1)),
	}
}

// Run executes the five pipeline stages for item.
func (p *Pipeline) Run(ctx context.Context, item *frontier.Item, intentCtx intent.Context) PageResult {
	log := p.logger.With().Str("url", item.URL).Int("depth", item.Depth).Logger()

	// Stage F: fetch.
	fetchStart := time.Now()
	fr := p.fetcher.Fetch(ctx, item.URL, fetcher.Options{Timeout: p.opts.FetchTimeout})
	fetchTime := time.Since(fetchStart)
	if p.metrics != nil {
		p.metrics.FetchDuration.Observe(fetchTime.Seconds())
	}
	if !fr.Success {
		log.Warn().Str("error", fr.Error).Msg("fetch failed")
		return PageResult{URL: item.URL, FetchTime: fetchTime, Success: false, ErrorKind: failure.KindFetchFailed}
	}

	base, err := url.Parse(fr.FinalURL)
	if err != nil {
		base, err = url.Parse(item.URL)
		if err != nil {
			return PageResult{URL: item.URL, FetchTime: fetchTime, Success: false, ErrorKind: failure.KindFetchFailed}
		}
	}

	if p.opts.SaveRawHTML && p.store != nil {
		if _, err := p.store.SaveRaw(ctx, item.URL, []byte(fr.HTML)); err != nil {
			log.Warn().Err(err).Msg("save raw html failed")
		}
	}

	// Stage E: extract.
	content := p.extractor.Extract(fr.HTML, fr.FinalURL)
	if !content.Success || strings.TrimSpace(content.Text) == "" {
		log.Warn().Str("error", content.Error).Msg("extraction failed")
		return PageResult{URL: item.URL, Title: content.Title, FetchTime: fetchTime, Success: false, ErrorKind: failure.KindExtractFailed}
	}
	if p.store != nil {
		if _, err := p.store.SaveProcessed(ctx, item.URL, content); err != nil {
			log.Warn().Err(err).Msg("save processed content failed")
		}
	}

	// Stage G: quick relevance gate (advisory only, never blocks discovery).
	preview := content.Text
	if len(preview) > 500 {
		preview = preview[:500]
	}
	quickScore, _ := p.analyser.QuickRelevance(ctx, content.Title, preview, intentCtx)

	result := PageResult{
		URL:       item.URL,
		Title:     content.Title,
		FetchTime: fetchTime,
		Success:   true,
	}

	if quickScore < p.opts.QuickGateThreshold {
		result.RelevanceScore = quickScore
		result.Summary = "below quick-gate threshold, deep analysis skipped"
		skipPrioritized := analysis.PrioritizeLinksByKeyword(content, intentCtx)
		result.DiscoveredURLs = p.discover(ctx, item, base, content, skipPrioritized)
		if p.store != nil {
			skipped := analysis.Result{
				RelevanceScore:  quickScore,
				KeyFindings:     []string{},
				ExtractedData:   map[string]string{},
				Summary:         result.Summary,
				PrioritizedURLs: skipPrioritized,
				FallbackReason:  "quick_gate_skip",
			}
			if _, err := p.store.SaveAnalysis(ctx, item.URL, skipped); err != nil {
				log.Warn().Err(err).Msg("save analysis failed")
			}
		}
		return result
	}

	// Stage A: deep analysis.
	analysisStart := time.Now()
	ar := p.analyser.Analyse(ctx, content, intentCtx, fr.FinalURL)
	analysisTime := time.Since(analysisStart)

	if p.store != nil {
		if _, err := p.store.SaveAnalysis(ctx, item.URL, ar); err != nil {
			log.Warn().Err(err).Msg("save analysis failed")
		}
	}

	result.AnalysisTime = analysisTime
	result.RelevanceScore = ar.RelevanceScore
	result.KeyFindings = ar.KeyFindings
	result.ExtractedData = ar.ExtractedData
	result.Summary = ar.Summary

	// Stage D: discovery.
	result.DiscoveredURLs = p.discover(ctx, item, base, content, ar.PrioritizedURLs)

	return result
}
