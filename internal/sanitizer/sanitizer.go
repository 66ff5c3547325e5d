// Package sanitizer cleans an already-isolated content node before it is
// converted to Markdown or handed to an LLM for analysis. Grounded on the
// teacher's HtmlSanitizer responsibility list (normalize malformed markup,
// remove empty or duplicate nodes, stabilize heading hierarchy), narrowed
// from a whole-document DOM sanitizer into one operating on the single
// content node the extractor's three-layer heuristic has already selected
// and stripped of chrome.
package sanitizer

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Clean mutates content in place: elements left empty by the extractor's
// chrome pass are removed, and heading levels are renumbered so the
// hierarchy never skips more than one level at a time (spec's Markdown
// rendering assumes well-formed heading nesting).
func Clean(content *goquery.Selection) {
	removeEmptyLeaves(content)
	normalizeHeadings(content)
}

// removeEmptyLeaves repeatedly strips leaf elements with no text and no
// replaced content (img/br/hr), since stripping chrome elements can leave
// their now-childless wrapper <div>s and <section>s behind.
func removeEmptyLeaves(content *goquery.Selection) {
	for pass := 0; pass < 3; pass++ {
		empties := content.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
			if s.Children().Length() > 0 {
				return false
			}
			switch goquery.NodeName(s) {
			case "img", "br", "hr":
				return false
			}
			if s.Find("img, br, hr").Length() > 0 {
				return false
			}
			return len(s.Text()) == 0
		})
		if empties.Length() == 0 {
			return
		}
		empties.Remove()
	}
}

var headingLevel = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}

// normalizeHeadings walks headings in document order and caps each one to
// at most one level deeper than the previous heading, renaming the
// underlying node's tag in place so the DOM stays a single tree (no
// reordering, no content loss).
func normalizeHeadings(content *goquery.Selection) {
	prev := 0
	content.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		level, ok := headingLevel[goquery.NodeName(h)]
		if !ok || len(h.Nodes) == 0 {
			return
		}
		if prev == 0 {
			prev = level
			return
		}
		if level > prev+1 {
			level = prev + 1
		}
		h.Nodes[0].Data = fmt.Sprintf("h%d", level)
		prev = level
	})
}
