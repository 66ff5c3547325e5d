// Package report renders a finished run's PageResults and run-level
// counters into the markdown/json summary artifacts named in spec §6.
// The report always renders, including for a zero-page run (spec §7).
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gomarkdown/markdown"

	"github.com/kestrelcrawl/intentcrawl/internal/frontier"
	"github.com/kestrelcrawl/intentcrawl/internal/intent"
	"github.com/kestrelcrawl/intentcrawl/internal/pipeline"
	"github.com/kestrelcrawl/intentcrawl/internal/store"
)

// PageEntry is one processed (or failed) URL's row in the report.
type PageEntry struct {
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Success        bool     `json:"success"`
	ErrorKind      string   `json:"error_kind,omitempty"`
	RelevanceScore float64  `json:"relevance_score"`
	Summary        string   `json:"summary,omitempty"`
	KeyFindings    []string `json:"key_findings,omitempty"`
}

// Report is the complete summary of one orchestrator run.
type Report struct {
	RunID           string        `json:"run_id"`
	StartURL        string        `json:"start_url"`
	Intent          string        `json:"intent"`
	IntentCategory  string        `json:"intent_category"`
	Keywords        []string      `json:"keywords"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Duration        time.Duration `json:"duration"`
	Cancelled       bool          `json:"cancelled"`
	PagesProcessed  int           `json:"pages_processed"`
	PagesFailed     int           `json:"pages_failed"`
	FrontierAdded   int           `json:"frontier_added"`
	DuplicatesSeen  int           `json:"duplicates_skipped"`
	FilteredOut     int           `json:"filtered_out"`
	StoreTotalFiles int           `json:"store_total_files"`
	StoreTotalBytes int64         `json:"store_total_bytes"`
	Pages           []PageEntry   `json:"pages"`
}

// Build assembles a Report from the orchestrator's run-level bookkeeping.
// results is in processing order; it is sorted by descending relevance
// score for the rendered table but the JSON field preserves that sorted
// order too, since the report is a derived, not authoritative, artifact.
func Build(runID, startURL, intentText string, intentCtx intent.Context, started, finished time.Time, cancelled bool, results []pipeline.PageResult, frontierStats frontier.Stats, storeStats store.Stats) Report {
	pages := make([]PageEntry, 0, len(results))
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
		pages = append(pages, PageEntry{
			URL:            r.URL,
			Title:          r.Title,
			Success:        r.Success,
			ErrorKind:      string(r.ErrorKind),
			RelevanceScore: r.RelevanceScore,
			Summary:        r.Summary,
			KeyFindings:    r.KeyFindings,
		})
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].RelevanceScore > pages[j].RelevanceScore })

	return Report{
		RunID:           runID,
		StartURL:        startURL,
		Intent:          intentText,
		IntentCategory:  string(intentCtx.Category),
		Keywords:        intentCtx.Keywords,
		StartedAt:       started,
		FinishedAt:      finished,
		Duration:        finished.Sub(started),
		Cancelled:       cancelled,
		PagesProcessed:  len(results) - failed,
		PagesFailed:     failed,
		FrontierAdded:   frontierStats.Added,
		DuplicatesSeen:  frontierStats.DuplicatesSkipped,
		FilteredOut:     frontierStats.FilteredOut,
		StoreTotalFiles: storeStats.TotalFiles,
		StoreTotalBytes: storeStats.TotalBytes,
		Pages:           pages,
	}
}

// RenderMarkdown renders r as a GitHub-flavored markdown document: a
// summary table of counters followed by one section per page, "Failed"
// sections carrying their error_kind per spec §7's user-visible behaviour.
func RenderMarkdown(r Report) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Crawl Report: %s\n\n", r.RunID)
	fmt.Fprintf(&buf, "- **Start URL:** %s\n", r.StartURL)
	fmt.Fprintf(&buf, "- **Intent:** %s\n", r.Intent)
	fmt.Fprintf(&buf, "- **Category:** %s\n", r.IntentCategory)
	fmt.Fprintf(&buf, "- **Started:** %s\n", r.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, "- **Finished:** %s\n", r.FinishedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, "- **Duration:** %s\n", r.Duration.Round(time.Second))
	if r.Cancelled {
		buf.WriteString("- **Cancelled:** yes, report covers partial progress\n")
	}
	buf.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&buf, "| Pages processed | Pages failed | Success rate | Duplicates skipped | Filtered out | Files written | Bytes written |\n")
	buf.WriteString("|---|---|---|---|---|---|---|\n")
	total := r.PagesProcessed + r.PagesFailed
	successRate := 0.0
	if total > 0 {
		successRate = 100 * float64(r.PagesProcessed) / float64(total)
	}
	fmt.Fprintf(&buf, "| %d | %d | %.1f%% | %d | %d | %d | %d |\n\n", r.PagesProcessed, r.PagesFailed, successRate, r.DuplicatesSeen, r.FilteredOut, r.StoreTotalFiles, r.StoreTotalBytes)

	if len(r.Pages) == 0 {
		buf.WriteString("No URLs were processed during this run.\n")
		return buf.Bytes()
	}

	buf.WriteString("## Pages\n\n")
	for _, p := range r.Pages {
		if p.Success {
			fmt.Fprintf(&buf, "### %s\n\n", pageHeading(p))
			fmt.Fprintf(&buf, "- **Relevance score:** %.2f\n", p.RelevanceScore)
			if p.Summary != "" {
				fmt.Fprintf(&buf, "- **Summary:** %s\n", p.Summary)
			}
			for _, f := range p.KeyFindings {
				fmt.Fprintf(&buf, "  - %s\n", f)
			}
		} else {
			fmt.Fprintf(&buf, "### Failed: %s\n\n", p.URL)
			fmt.Fprintf(&buf, "- **error_kind:** %s\n", p.ErrorKind)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

func pageHeading(p PageEntry) string {
	if p.Title != "" {
		return fmt.Sprintf("%s (%s)", p.Title, p.URL)
	}
	return p.URL
}

// RenderHTML renders r's markdown form through gomarkdown, for operators
// who want a report they can open directly in a browser rather than a
// markdown viewer.
func RenderHTML(r Report) []byte {
	return markdown.ToHTML(RenderMarkdown(r), nil, nil)
}

// RenderJSON renders r as indented JSON, the machine-readable twin of the
// markdown report (spec §6's crawl_report_<timestamp>.{md,json} pair).
func RenderJSON(r Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
