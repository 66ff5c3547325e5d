package llmjson_test

import (
	"testing"

	"github.com/kestrelcrawl/intentcrawl/internal/llmjson"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

func TestParseFencedJSON(t *testing.T) {
	raw := "Sure, here you go:\n```json\n{\"category\": \"admission\", \"keywords\": [\"apply\", \"deadline\"]}\n```\nLet me know if that helps."
	result := llmjson.Parse[sample](raw)
	v, ok := result.Unwrap()
	require.True(t, ok, result.Reason())
	require.Equal(t, "admission", v.Category)
	require.Equal(t, []string{"apply", "deadline"}, v.Keywords)
}

func TestParseBareFence(t *testing.T) {
	raw := "```\n{\"category\": \"news\", \"keywords\": [\"x\"]}\n```"
	result := llmjson.Parse[sample](raw)
	v, ok := result.Unwrap()
	require.True(t, ok)
	require.Equal(t, "news", v.Category)
}

func TestParseProseWrappedObject(t *testing.T) {
	raw := "The result is {\"category\": \"research\", \"keywords\": [\"paper\"]} as requested."
	result := llmjson.Parse[sample](raw)
	v, ok := result.Unwrap()
	require.True(t, ok)
	require.Equal(t, "research", v.Category)
}

func TestParseNestedBraces(t *testing.T) {
	raw := `{"category": "data", "keywords": ["a"], "extra": {"nested": "{}"}}`
	result := llmjson.Parse[sample](raw)
	v, ok := result.Unwrap()
	require.True(t, ok)
	require.Equal(t, "data", v.Category)
}

func TestParseNoObjectFallsBack(t *testing.T) {
	result := llmjson.Parse[sample]("no json here at all")
	_, ok := result.Unwrap()
	require.False(t, ok)
	require.Equal(t, "no_json_object_found", result.Reason())
}

func TestParseMalformedJSONFallsBack(t *testing.T) {
	result := llmjson.Parse[sample](`{"category": "data", "keywords": [}`)
	_, ok := result.Unwrap()
	require.False(t, ok)
	require.Contains(t, result.Reason(), "json_unmarshal_failed")
}

func TestExtractObjectPrefersFencedOverBrace(t *testing.T) {
	raw := "prefix {\"outer\": true} ```json\n{\"inner\": true}\n```"
	obj, ok := llmjson.ExtractObject(raw)
	require.True(t, ok)
	require.Equal(t, `{"inner": true}`, obj)
}
