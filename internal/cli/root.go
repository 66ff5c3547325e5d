// Package cli is the cobra-based CLI surface (spec §6), wiring every flag
// the orchestrator needs onto concrete capability implementations and
// invoking Orchestrator.Run. Grounded on the teacher's internal/cli/root.go
// flag-registration idiom, generalized from a single-command documentation
// crawler onto this module's intent/search/analysis flag set.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kestrelcrawl/intentcrawl/internal/analysis"
	"github.com/kestrelcrawl/intentcrawl/internal/config"
	"github.com/kestrelcrawl/intentcrawl/internal/extractor"
	"github.com/kestrelcrawl/intentcrawl/internal/fetcher"
	"github.com/kestrelcrawl/intentcrawl/internal/frontier"
	"github.com/kestrelcrawl/intentcrawl/internal/intent"
	"github.com/kestrelcrawl/intentcrawl/internal/llm"
	"github.com/kestrelcrawl/intentcrawl/internal/logging"
	"github.com/kestrelcrawl/intentcrawl/internal/metrics"
	"github.com/kestrelcrawl/intentcrawl/internal/orchestrator"
	"github.com/kestrelcrawl/intentcrawl/internal/pipeline"
	"github.com/kestrelcrawl/intentcrawl/internal/ratelimit"
	"github.com/kestrelcrawl/intentcrawl/internal/report"
	"github.com/kestrelcrawl/intentcrawl/internal/search"
	"github.com/kestrelcrawl/intentcrawl/internal/seed"
	"github.com/kestrelcrawl/intentcrawl/internal/store"
	"github.com/kestrelcrawl/intentcrawl/internal/urlkey"
)

var (
	flagURL             string
	flagIntent          string
	flagIntentFile      string
	flagMaxPages        int
	flagMaxDepth        int
	flagDelay           float64
	flagExplorationRate float64
	flagOutput          string
	flagNoSelenium      bool
	flagNoReport        bool
	flagDebug           bool
	flagHeadless        bool
	flagNoHeadless      bool
	flagSmallModel      string
	flagLargeModel      string
	flagMetricsAddr     string
	flagLogLevel        string
	flagConfigFile      string
)

var rootCmd = &cobra.Command{
	Use:   "intentcrawl",
	Short: "An intent-driven web crawler.",
	Long: `intentcrawl discovers and prioritises pages on a site starting from one
URL, guided by a freeform natural-language description of what the operator
wants to find. It extracts each page's main content, scores its relevance
with an LLM, and emits a structured corpus of per-page artifacts plus a
summary report.`,
	RunE: runCrawl,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&flagURL, "url", "", "starting URL for the crawl (required)")
	rootCmd.Flags().StringVar(&flagIntent, "intent", "", "freeform description of what the operator wants to find")
	rootCmd.Flags().StringVar(&flagIntentFile, "intent-file", "", "path to a file containing the intent text, instead of --intent")
	rootCmd.Flags().IntVar(&flagMaxPages, "max-pages", 50, "maximum number of pages to process")
	rootCmd.Flags().IntVar(&flagMaxDepth, "max-depth", 3, "maximum link depth from the start URL")
	rootCmd.Flags().Float64Var(&flagDelay, "delay", 1.5, "base inter-request delay in seconds")
	rootCmd.Flags().Float64Var(&flagExplorationRate, "exploration-rate", 0.2, "frontier epsilon-greedy exploration rate")
	rootCmd.Flags().StringVar(&flagOutput, "output", "output", "output directory for the content store")
	rootCmd.Flags().BoolVar(&flagNoSelenium, "no-selenium", false, "use a plain HTTP fetcher instead of a headless browser")
	rootCmd.Flags().BoolVar(&flagNoReport, "no-report", false, "skip writing the summary report")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", true, "run the browser fetcher headless (--no-headless to disable)")
	rootCmd.Flags().BoolVar(&flagNoHeadless, "no-headless", false, "run the browser fetcher with a visible window (overrides --headless)")
	rootCmd.Flags().StringVar(&flagSmallModel, "small-model", "claude-haiku-4-5", "model name backing the fast/intent tiers")
	rootCmd.Flags().StringVar(&flagLargeModel, "large-model", "claude-sonnet-4-5", "model name backing the analysis tier")
	rootCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (disabled unless set)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&flagConfigFile, "config", "", "path to a JSON file overriding the limit/timing flags above")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	intentText, err := resolveIntent()
	if err != nil {
		return err
	}
	if flagURL == "" {
		return fmt.Errorf("--url is required")
	}

	level := flagLogLevel
	if flagDebug {
		level = "debug"
	}
	logger := logging.New(level, flagDebug, os.Stderr)

	m := metrics.New()
	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	defer stopMetrics()
	if flagMetricsAddr != "" {
		go func() {
			if err := m.Serve(metricsCtx, flagMetricsAddr); err != nil {
				logger.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	llmClient := buildLLMClient(logger)

	namer := llm.NewNamer(llmClient, 10*time.Second)
	st, err := store.New(flagOutput, namer)
	if err != nil {
		return fmt.Errorf("initialise store: %w", err)
	}

	compiler := intent.New(llmClient, logger)
	analyser := analysis.New(llmClient).WithMetrics(m)

	htmlFetcher, closeFetcher := buildFetcher(logger)
	defer closeFetcher()

	ext := extractor.NewGoqueryExtractor()

	resolved, err := resolveConfig()
	if err != nil {
		return err
	}

	policy := urlkey.NewPolicy(resolved.AllowedDomains, resolved.ExcludePatterns)

	// max_retries defaults to 0 per spec's most-conservative reading (§9).
	fr := frontier.New(policy, resolved.MaxDepth, resolved.ExplorationRate, 0)

	pipelineOpts := pipeline.DefaultOptions()
	pipelineOpts.MaxDepth = resolved.MaxDepth
	pl := pipeline.New(htmlFetcher, ext, analyser, st, fr, m, logger, pipelineOpts)

	providers := map[string]search.Provider{
		"duckduckgo_api":  search.NewDuckDuckGoAPIProvider(),
		"bing":            search.NewBingProvider(),
		"duckduckgo_html": search.NewDuckDuckGoHTMLProvider(),
		"google":          search.NewGoogleProvider(),
	}
	seedGen := seed.New(providers, "duckduckgo_api", logger)

	cfg := orchestrator.DefaultConfig(flagURL, intentText)
	cfg.MaxPages = resolved.MaxPages
	cfg.MaxDepth = resolved.MaxDepth
	cfg.RequestDelay = resolved.RequestDelay
	cfg.RunTimeout = resolved.RunTimeout
	cfg.ExplorationRate = resolved.ExplorationRate
	cfg.SaveReport = !flagNoReport
	cfg.URLPolicy = policy

	orch := orchestrator.New(cfg, compiler, seedGen, fr, pl, st, m, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printSummary(rep)
	return nil
}

func resolveIntent() (string, error) {
	if flagIntentFile != "" {
		data, err := os.ReadFile(flagIntentFile)
		if err != nil {
			return "", fmt.Errorf("read --intent-file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return flagIntent, nil
}

// resolveConfig seeds a config.Builder from the flag defaults and, if
// --config points at a file, overlays its JSON contents on top (spec
// expansion: ambient configuration loading, grounded on the teacher's
// config package's default-then-override builder idiom).
func resolveConfig() (config.Built, error) {
	builder := config.WithDefault(
		flagMaxPages,
		flagMaxDepth,
		time.Duration(flagDelay*float64(time.Second)),
		time.Hour,
		flagExplorationRate,
	)

	if flagConfigFile != "" {
		overrides, err := config.Load(flagConfigFile)
		if err != nil {
			return config.Built{}, err
		}
		builder = builder.Apply(overrides)
	}

	return builder.Build()
}

// buildLLMClient selects Anthropic when ANTHROPIC_API_KEY is set, OpenAI
// when OPENAI_API_KEY is set instead, and a NullClient otherwise so the
// run still completes via the rule-based fallbacks (spec §8 scenario 3).
// Whichever adapter is chosen is wrapped in a CachingClient so repeated
// byte-identical prompts within one run skip the network.
func buildLLMClient(logger zerolog.Logger) llm.Client {
	small := flagSmallModel
	large := flagLargeModel

	var base llm.Client
	switch {
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		base = llm.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), small, small, large, logger)
	case os.Getenv("OPENAI_API_KEY") != "":
		base = llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), small, small, large, logger)
	default:
		logger.Warn().Msg("no LLM API key configured, falling back to rule-based analysis for the whole run")
		base = &llm.NullClient{Reason: "no LLM API key configured"}
	}

	return llm.NewCachingClient(base)
}

// buildFetcher selects HTTPFetcher when --no-selenium is set, otherwise a
// headless-Chrome ChromeFetcher (spec §6), wrapped in a per-host rate
// limiter (spec §5's ratelimit-underneath-request-delay rule).
func buildFetcher(logger zerolog.Logger) (fetcher.HTMLFetcher, func()) {
	closeFn := func() {}
	var base fetcher.HTMLFetcher
	if flagNoSelenium {
		base = fetcher.NewHTTPFetcher()
	} else {
		chrome := fetcher.NewChromeFetcher(flagHeadless && !flagNoHeadless)
		base = chrome
		closeFn = chrome.Close
	}
	limiter := ratelimit.New(2.0, 2)
	return fetcher.NewRateLimited(base, limiter), closeFn
}

func printSummary(rep report.Report) {
	fmt.Printf("Run %s: %d pages processed, %d failed (%.1fs)\n",
		rep.RunID, rep.PagesProcessed, rep.PagesFailed, rep.Duration.Seconds())
}
