// Package llmjson implements the tolerant JSON extraction rule every LLM
// call in the core must apply before trusting a model's output (spec §4.3,
// §6's "LLM JSON contract"): a JSON object, possibly wrapped in ```json
// fences or preceded/followed by prose, with unknown keys ignored.
//
// This replaces the duck-typed try/parse/except chains the source program
// uses with an explicit tagged-variant result: every caller must inspect
// Unwrap() and handle both the parsed value and the fallback reason, rather
// than silently treating a zero value as success.
package llmjson

import (
	"encoding/json"
	"strings"
)

// Result is the tagged variant: either Ok holds a successfully parsed and
// unmarshalled T, or the zero value plus a human-readable Reason explaining
// why parsing fell back.
type Result[T any] struct {
	value  T
	ok     bool
	reason string
}

// Ok constructs a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fallback constructs a failed Result carrying why parsing did not succeed.
func Fallback[T any](reason string) Result[T] {
	return Result[T]{reason: reason}
}

// Unwrap returns the parsed value and whether parsing succeeded.
func (r Result[T]) Unwrap() (T, bool) {
	return r.value, r.ok
}

// Reason returns why parsing fell back; empty when Unwrap's second value is
// true.
func (r Result[T]) Reason() string {
	return r.reason
}

// Parse extracts the first plausible JSON object from raw free-form LLM
// text and unmarshals it into a T. Every caller (C3's intent compiler, C6's
// deep-analysis stage) is expected to fall back to its own rule-based
// default whenever the returned Result is not Ok.
func Parse[T any](raw string) Result[T] {
	object, found := ExtractObject(raw)
	if !found {
		return Fallback[T]("no_json_object_found")
	}

	var value T
	if err := json.Unmarshal([]byte(object), &value); err != nil {
		return Fallback[T]("json_unmarshal_failed: " + err.Error())
	}

	return Ok(value)
}

// ExtractObject pulls a single candidate JSON object out of raw text. It
// tries, in order: a fenced ```json ... ``` or ``` ... ``` code block, then
// the brace-balanced {...} span opened by the first '{' in the text. It does
// not validate the candidate is well-formed JSON; Parse's Unmarshal call is
// the source of truth for that.
func ExtractObject(raw string) (string, bool) {
	if fenced, ok := extractFenced(raw); ok {
		return fenced, true
	}
	return extractBraceBalanced(raw)
}

func extractFenced(raw string) (string, bool) {
	const fence = "```"

	start := strings.Index(raw, fence)
	if start == -1 {
		return "", false
	}

	rest := raw[start+len(fence):]
	// Skip an optional language tag on the same line (e.g. "json").
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		tag := strings.TrimSpace(rest[:nl])
		if tag == "" || isSimpleWord(tag) {
			rest = rest[nl+1:]
		}
	}

	end := strings.Index(rest, fence)
	if end == -1 {
		return "", false
	}

	body := strings.TrimSpace(rest[:end])
	if body == "" {
		return "", false
	}
	return body, true
}

func isSimpleWord(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// extractBraceBalanced scans for the first '{' and returns the text up to
// its matching '}', honoring string literals so braces inside quoted
// values don't throw off the depth count.
func extractBraceBalanced(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(raw); i++ {
		c := raw[i]

		if escaped {
			escaped = false
			continue
		}

		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// skip
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}

	return "", false
}
