package frontier_test

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelcrawl/intentcrawl/internal/frontier"
	"github.com/kestrelcrawl/intentcrawl/internal/urlkey"
	"github.com/stretchr/testify/require"
)

func emptyPolicy() urlkey.Policy { return urlkey.Policy{} }

func base(t *testing.T) url.URL {
	t.Helper()
	u, err := url.Parse("https://ex.com")
	require.NoError(t, err)
	return *u
}

func TestAddRejectsDepthBeyondMax(t *testing.T) {
	f := frontier.New(emptyPolicy(), 0, 0, 0)
	ok := f.Add("https://ex.com/a", base(t), frontier.PriorityHigh, 1, "https://ex.com", 0, "general", "seed")
	require.False(t, ok)
	require.Equal(t, 1, f.Stats().FilteredOut)
}

func TestAddRejectsDuplicateURL(t *testing.T) {
	f := frontier.New(emptyPolicy(), 3, 0, 0)
	require.True(t, f.Add("https://ex.com/a", base(t), frontier.PriorityHigh, 0, "", 0, "general", "seed"))
	require.False(t, f.Add("https://ex.com/a/", base(t), frontier.PriorityHigh, 0, "", 0, "general", "seed"))
	require.Equal(t, 1, f.Stats().DuplicatesSkipped)
}

func TestAddRejectsExcludedPattern(t *testing.T) {
	policy := urlkey.NewPolicy(nil, []string{"/login"})
	f := frontier.New(policy, 3, 0, 0)
	ok := f.Add("https://ex.com/login?next=/", base(t), frontier.PriorityHigh, 0, "", 0, "general", "seed")
	require.False(t, ok)
	require.Equal(t, 1, f.Stats().FilteredOut)
}

func TestGetNextReturnsSoleItemEvenWithFullExploration(t *testing.T) {
	f := frontier.New(emptyPolicy(), 3, 1.0, 0)
	f.Add("https://ex.com/a", base(t), frontier.PriorityHigh, 0, "", 0, "general", "seed")

	item := f.GetNext()
	require.NotNil(t, item)
	require.Equal(t, "https://ex.com/a", item.URL)
	require.Nil(t, f.GetNext())
}

func TestGetNextOrdersByHighestBonusFirstWhenDeterministic(t *testing.T) {
	f := frontier.New(emptyPolicy(), 3, 0, 0)
	f.Add("https://ex.com/low", base(t), frontier.PriorityLow, 0, "", 0, "general", "seed")
	f.Add("https://ex.com/high", base(t), frontier.PriorityHigh, 0, "", 0, "admission", "seed")

	first := f.GetNext()
	require.Equal(t, "https://ex.com/high", first.URL)
	second := f.GetNext()
	require.Equal(t, "https://ex.com/low", second.URL)
}

func TestGetNextBreaksTiesByDepthWhenSortKeysAreEqual(t *testing.T) {
	f := frontier.New(emptyPolicy(), 3, 0, 0)
	// Equal sort_key by construction: the deeper item's higher ai_score
	// exactly offsets its depth penalty (2*0.3 == 0.3*2).
	f.Add("https://ex.com/deep", base(t), frontier.PriorityMedium, 2, "", 0.3, "general", "seed")
	f.Add("https://ex.com/shallow", base(t), frontier.PriorityMedium, 0, "", 0, "general", "seed")

	first := f.GetNext()
	require.Equal(t, "https://ex.com/shallow", first.URL)
}

func TestAddRejectsURLAlreadyProcessedOK(t *testing.T) {
	f := frontier.New(emptyPolicy(), 3, 0, 0)
	f.Add("https://ex.com/b", base(t), frontier.PriorityHigh, 0, "", 0, "general", "seed")
	item := f.GetNext()
	f.MarkProcessed(item.URL, true)

	ok := f.Add("https://ex.com/b", base(t), frontier.PriorityHigh, 1, "https://ex.com/a", 0, "general", "discovered")
	require.False(t, ok)
	require.Equal(t, 1, f.Stats().DuplicatesSkipped)
}

func TestAddRejectsURLAlreadyProcessedFailed(t *testing.T) {
	f := frontier.New(emptyPolicy(), 3, 0, 0)
	f.Add("https://ex.com/b", base(t), frontier.PriorityHigh, 0, "", 0, "general", "seed")
	item := f.GetNext()
	f.MarkProcessed(item.URL, false)

	ok := f.Add("https://ex.com/b", base(t), frontier.PriorityHigh, 1, "https://ex.com/a", 0, "general", "discovered")
	require.False(t, ok)
	require.Equal(t, 1, f.Stats().DuplicatesSkipped)
}

func TestMarkProcessedMovesKeyToFailedSet(t *testing.T) {
	f := frontier.New(emptyPolicy(), 3, 0, 1)
	f.Add("https://ex.com/a", base(t), frontier.PriorityHigh, 0, "", 0, "general", "seed")
	item := f.GetNext()
	f.MarkProcessed(item.URL, false)

	retried := f.Retry(item.URL, base(t), frontier.PriorityHigh, 0, "", 0, "general")
	require.True(t, retried)
}

func TestRetryRespectsMaxRetriesCap(t *testing.T) {
	f := frontier.New(emptyPolicy(), 3, 0, 0)
	f.Add("https://ex.com/a", base(t), frontier.PriorityHigh, 0, "", 0, "general", "seed")
	item := f.GetNext()
	f.MarkProcessed(item.URL, false)

	require.False(t, f.Retry(item.URL, base(t), frontier.PriorityHigh, 0, "", 0, "general"))
}

func TestSaveStateAndLoadStateRoundTrip(t *testing.T) {
	f := frontier.New(emptyPolicy(), 3, 0, 0)
	f.Add("https://ex.com/a", base(t), frontier.PriorityHigh, 0, "", 0, "admission", "seed")
	f.Add("https://ex.com/b", base(t), frontier.PriorityLow, 0, "", 0, "general", "seed")

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, f.SaveState(path))

	restored := frontier.New(emptyPolicy(), 3, 0, 0)
	require.NoError(t, restored.LoadState(path))

	require.Equal(t, f.Len(), restored.Len())
	require.Equal(t, f.GetNext().URL, restored.GetNext().URL)

	_ = os.Remove(path)
}
