package intent

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// categoryKeywords maps each closed category to a set of substrings whose
// presence in the intent text selects that category. Checked in table
// order; the first match wins.
var categoryKeywords = []struct {
	category Category
	terms    []string
}{
	{CategoryAdmission, []string{"admission", "enroll", "apply", "application", "tuition"}},
	{CategoryContact, []string{"contact", "phone", "address", "reach"}},
	{CategoryEmail, []string{"email", "e-mail", "mailto"}},
	{CategoryPolicy, []string{"policy", "terms", "privacy", "compliance", "regulation"}},
	{CategoryResearch, []string{"research", "publication", "study", "paper"}},
	{CategoryNews, []string{"news", "announcement", "press release"}},
	{CategoryEvent, []string{"event", "conference", "schedule", "calendar"}},
	{CategoryData, []string{"data", "dataset", "statistics", "report"}},
	{CategoryContent, []string{"content", "article", "blog"}},
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "for": true, "to": true,
	"and": true, "or": true, "in": true, "on": true, "is": true, "are": true,
	"about": true, "with": true, "that": true, "this": true, "find": true,
	"information": true, "we": true, "our": true,
}

var caseFolder = cases.Fold()

// ruleBasedDefault builds a deterministic IntentContext when the LLM path
// fails for any reason: category by keyword-substring match, keywords by
// tokenising and stopword-filtering, background a fixed template (spec
// §4.3).
func ruleBasedDefault(intentText, reason string) Context {
	normalized := caseFolder.String(norm.NFC.String(intentText))

	category := CategoryGeneral
	for _, entry := range categoryKeywords {
		for _, term := range entry.terms {
			if strings.Contains(normalized, term) {
				category = entry.category
				break
			}
		}
		if category != CategoryGeneral {
			break
		}
	}

	keywords := extractKeywords(normalized)

	return Context{
		Category:           category,
		Keywords:           keywords,
		SearchFocus:        intentText,
		PrioritySignals:    nil,
		ExcludePatterns:    nil,
		AnalysisBackground: fmt.Sprintf("We are collecting information about '%s'.", intentText),
		FallbackReason:     reason,
	}
}

// extractKeywords tokenises normalized text on non-letter/digit runes,
// drops stopwords and single-character tokens, and returns up to 8
// unique tokens in first-seen order.
func extractKeywords(normalized string) []string {
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})

	seen := make(map[string]bool)
	var keywords []string
	for _, field := range fields {
		if utf8.RuneCountInString(field) < 2 || stopwords[field] {
			continue
		}
		if seen[field] {
			continue
		}
		seen[field] = true
		keywords = append(keywords, field)
		if len(keywords) == 8 {
			break
		}
	}

	if len(keywords) < 3 {
		keywords = append(keywords, "general")
	}

	return keywords
}
