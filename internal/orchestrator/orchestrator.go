// Package orchestrator is the single-threaded control loop (C8): compile
// the intent, generate seeds, pop-pipeline-push until the frontier is
// empty or the page budget is exhausted, then emit a report over whatever
// was processed. Grounded on the teacher's Scheduler.ExecuteCrawling outer
// shape (construct dependencies, validate, seed, loop, defer final stats)
// generalized from a concurrency-0 documentation crawl into the
// intent-scored pipeline this module runs per pop (spec §4.8).
package orchestrator

import (
	"context"
	"math/rand"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/kestrelcrawl/intentcrawl/internal/frontier"
	"github.com/kestrelcrawl/intentcrawl/internal/intent"
	"github.com/kestrelcrawl/intentcrawl/internal/metrics"
	"github.com/kestrelcrawl/intentcrawl/internal/pipeline"
	"github.com/kestrelcrawl/intentcrawl/internal/report"
	"github.com/kestrelcrawl/intentcrawl/internal/runid"
	"github.com/kestrelcrawl/intentcrawl/internal/seed"
	"github.com/kestrelcrawl/intentcrawl/internal/store"
	"github.com/kestrelcrawl/intentcrawl/internal/urlkey"
	"github.com/kestrelcrawl/intentcrawl/pkg/timeutil"
)

// Config holds the run-level settings named in spec §6's CLI surface.
type Config struct {
	StartURL        string
	Intent          string
	MaxPages        int
	MaxDepth        int
	RequestDelay    time.Duration
	ExplorationRate float64
	RunTimeout      time.Duration
	SaveReport      bool
	IncludeOriginal bool
	UseSiteFilter   bool
	SeedMaxResults  int
	URLPolicy       urlkey.Policy
}

// DefaultConfig matches spec §6's documented CLI defaults.
func DefaultConfig(startURL, intentText string) Config {
	return Config{
		StartURL:        startURL,
		Intent:          intentText,
		MaxPages:        50,
		MaxDepth:        3,
		RequestDelay:    1500 * time.Millisecond,
		ExplorationRate: 0.2,
		RunTimeout:      time.Hour,
		SaveReport:      true,
		IncludeOriginal: true,
		UseSiteFilter:   true,
		SeedMaxResults:  10,
	}
}

// Orchestrator wires the compiler, seed generator, frontier, pipeline,
// store, and metrics registry together and owns the run loop. Holds no
// state across Run invocations beyond what its fields already reference.
type Orchestrator struct {
	cfg       Config
	compiler  *intent.Compiler
	seedGen   *seed.Generator
	frontier  *frontier.Frontier
	pipeline  *pipeline.Pipeline
	store     *store.Store
	metrics   *metrics.Registry
	logger    zerolog.Logger
	sleeper   timeutil.Sleeper
	rng       *rand.Rand
}

// New constructs an Orchestrator from its already-built dependencies; the
// CLI layer is responsible for choosing concrete capability
// implementations (fetcher, extractor, LLM client, search providers) and
// assembling the frontier/pipeline/store before calling this.
func New(cfg Config, compiler *intent.Compiler, seedGen *seed.Generator, fr *frontier.Frontier, pl *pipeline.Pipeline, st *store.Store, m *metrics.Registry, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		compiler: compiler,
		seedGen:  seedGen,
		frontier: fr,
		pipeline: pl,
		store:    st,
		metrics:  m,
		logger:   logger.With().Str("component", "orchestrator").Logger(),
		sleeper:  timeutil.NewRealSleeper(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run executes compile -> seed -> loop -> report (spec §4.8's pseudocode).
// ctx cancellation is honoured at the top of every loop iteration; on
// cancellation the loop exits cleanly, a checkpoint is written, and the
// report still reflects whatever PageResults exist (spec §5, §7).
func (o *Orchestrator) Run(ctx context.Context) (report.Report, error) {
	runID := runid.New()
	started := time.Now()
	log := o.logger.With().Str("run_id", runID).Logger()

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancel()

	intentCtx := o.compiler.Compile(runCtx, o.cfg.Intent, o.cfg.StartURL)
	if o.store != nil {
		_ = o.store.SaveState("intent_analysis", intentCtx)
	}

	seeds := o.seedGen.Generate(runCtx, intentCtx, o.cfg.StartURL, o.cfg.IncludeOriginal, o.cfg.UseSiteFilter, o.cfg.SeedMaxResults)
	if len(seeds) == 0 {
		seeds = []seed.URL{{URL: o.cfg.StartURL, Source: seed.SourceOriginal, RelevanceScore: 1.0}}
	}
	if o.store != nil {
		_ = o.store.SaveState("seed_urls", seeds)
	}

	base, err := url.Parse(o.cfg.StartURL)
	if err != nil {
		base = &url.URL{}
	}
	for _, s := range seeds {
		o.frontier.Add(s.URL, *base, frontier.PriorityHigh, 0, "", s.RelevanceScore, "seed", "seed")
	}

	var results []pipeline.PageResult
	pagesProcessed := 0
	cancelled := false

loop:
	for o.frontier.Len() > 0 && pagesProcessed < o.cfg.MaxPages {
		select {
		case <-runCtx.Done():
			cancelled = true
			break loop
		default:
		}

		item := o.frontier.GetNext()
		if item == nil {
			break
		}

		if allowed, reason := urlkey.IsAllowed(item.URL, o.cfg.URLPolicy); !allowed {
			log.Debug().Str("url", item.URL).Str("reason", reason).Msg("skipping disallowed item popped from frontier")
			o.frontier.MarkProcessed(item.URL, false)
			continue
		}

		result := o.pipeline.Run(runCtx, item, intentCtx)
		o.frontier.MarkProcessed(item.URL, result.Success)
		results = append(results, result)
		if result.Success {
			pagesProcessed++
		}

		if o.metrics != nil {
			if result.Success {
				o.metrics.PagesProcessed.Inc()
			} else {
				o.metrics.PagesFailed.Inc()
			}
			o.metrics.FrontierSize.Set(float64(o.frontier.Len()))
			if o.store != nil {
				o.metrics.StoreBytes.Set(float64(o.store.Stats().TotalBytes))
			}
		}

		select {
		case <-runCtx.Done():
			cancelled = true
			break loop
		default:
		}

		o.sleeper.Sleep(o.jitteredDelay())
	}

	if o.frontier != nil && o.store != nil {
		stem := runid.CheckpointFilename(runID, time.Now())
		if err := o.frontier.SaveState(o.store.StatePath(stem)); err != nil {
			log.Warn().Err(err).Msg("save frontier checkpoint failed")
		}
	}

	finished := time.Now()
	var frStats frontier.Stats
	if o.frontier != nil {
		frStats = o.frontier.Stats()
	}
	var stStats store.Stats
	if o.store != nil {
		stStats = o.store.Stats()
	}

	rep := report.Build(runID, o.cfg.StartURL, o.cfg.Intent, intentCtx, started, finished, cancelled, results, frStats, stStats)

	if o.cfg.SaveReport && o.store != nil {
		name := runid.ReportFilename(finished)
		md := report.RenderMarkdown(rep)
		if _, err := o.store.SaveReport(name, md, store.ReportMarkdown); err != nil {
			log.Warn().Err(err).Msg("save markdown report failed")
		}
		js, err := report.RenderJSON(rep)
		if err == nil {
			if _, err := o.store.SaveReport(name, js, store.ReportJSON); err != nil {
				log.Warn().Err(err).Msg("save json report failed")
			}
		}
	}

	return rep, nil
}

// jitteredDelay multiplies the configured request delay by a uniform
// factor in [0.5, 1.0], per spec §4.8's inter-request sleep.
func (o *Orchestrator) jitteredDelay() time.Duration {
	factor := 0.5 + 0.5*o.rng.Float64()
	return time.Duration(float64(o.cfg.RequestDelay) * factor)
}

