// Package frontier is the priority-ordered URL queue (C5): a min-heap of
// Items plus seen/processed/failed sets keyed by canonical URL hash,
// ε-greedy pop, depth capping, and push-rejection counters (spec §4.5).
package frontier

import (
	"container/heap"
	"encoding/json"
	"math/rand"
	"net/url"
	"os"
	"time"

	"github.com/kestrelcrawl/intentcrawl/internal/urlkey"
)

// Stats exposes the push-rejection counters that, together with the
// number of items ever popped, partition every push attempt (spec
// invariant 5).
type Stats struct {
	Added             int
	DuplicatesSkipped int
	FilteredOut       int
}

// Frontier is the concrete C5 implementation. Not safe for concurrent use
// without external locking; spec §5 treats the core as logically
// single-threaded.
type Frontier struct {
	heap itemHeap

	seen      Set[string]
	processed Set[string]
	failed    map[string]int // key -> retry count

	policy          urlkey.Policy
	maxDepth        int
	explorationRate float64
	maxRetries      int

	rng *rand.Rand

	stats Stats
}

// New constructs an empty Frontier.
func New(policy urlkey.Policy, maxDepth int, explorationRate float64, maxRetries int) *Frontier {
	return &Frontier{
		heap:            itemHeap{},
		seen:            NewSet[string](),
		processed:       NewSet[string](),
		failed:          make(map[string]int),
		policy:          policy,
		maxDepth:        maxDepth,
		explorationRate: explorationRate,
		maxRetries:      maxRetries,
		rng:             rand.New(rand.NewSource(1)),
	}
}

// Add attempts to push a URL onto the frontier. It returns false when the
// push is rejected; the rejection always increments exactly one of
// Stats.FilteredOut or Stats.DuplicatesSkipped (spec §4.5, invariant 5).
func (f *Frontier) Add(rawURL string, base url.URL, basePriority BasePriority, depth int, parentURL string, aiScore float64, linkType, reason string) bool {
	return f.add(rawURL, base, basePriority, depth, parentURL, aiScore, linkType, reason, false)
}

// add is Add's implementation. bypassTerminal skips the processed/failed
// terminal-set check, for Retry's explicit re-enqueue of an already-failed
// key.
func (f *Frontier) add(rawURL string, base url.URL, basePriority BasePriority, depth int, parentURL string, aiScore float64, linkType, reason string, bypassTerminal bool) bool {
	canonical, ok := urlkey.Normalise(rawURL, &base)
	if !ok {
		f.stats.FilteredOut++
		return false
	}

	if allowed, _ := urlkey.IsAllowed(canonical, f.policy); !allowed {
		f.stats.FilteredOut++
		return false
	}

	if depth > f.maxDepth {
		f.stats.FilteredOut++
		return false
	}

	key := urlkey.Key(canonical)
	// A key already resolved to processed-ok or processed-failed is
	// permanently retired: it must never be re-enqueued from a later page's
	// discovered links (spec invariant 1), only via an explicit Retry.
	if f.seen.Contains(key) || (!bypassTerminal && (f.processed.Contains(key) || f.isFailed(key))) {
		f.stats.DuplicatesSkipped++
		return false
	}

	item := &Item{
		URL:          canonical,
		Depth:        depth,
		BasePriority: basePriority,
		AIScore:      aiScore,
		LinkType:     linkType,
		ParentURL:    parentURL,
		EnqueueTime:  time.Now(),
		Reason:       reason,
	}

	heap.Push(&f.heap, item)
	f.seen.Add(key)
	f.stats.Added++
	return true
}

// GetNext pops the next item. With probability explorationRate (and heap
// size > 1), a uniformly random pick from the first 10 heap slots is
// popped in place of the top item, injecting exploration diversity; otherwise
// the heap's strict ordering applies. Returns nil when empty.
func (f *Frontier) GetNext() *Item {
	if f.heap.Len() == 0 {
		return nil
	}

	if f.heap.Len() > 1 && f.rng.Float64() < f.explorationRate {
		window := f.heap.Len()
		if window > 10 {
			window = 10
		}
		pick := f.rng.Intn(window)
		return heap.Remove(&f.heap, pick).(*Item)
	}

	item := heap.Pop(&f.heap).(*Item)
	return item
}

// MarkProcessed moves key out of seen into processed or failed.
func (f *Frontier) MarkProcessed(rawURL string, success bool) {
	key := urlkey.Key(rawURL)
	f.seen.Remove(key)
	if success {
		f.processed.Add(key)
	} else {
		if _, ok := f.failed[key]; !ok {
			f.failed[key] = 0
		}
	}
}

// Retry re-enqueues a previously failed key, incrementing its retry
// counter, as long as that counter stays within maxRetries. Returns false
// when the cap is exceeded or the key never failed.
func (f *Frontier) Retry(rawURL string, base url.URL, basePriority BasePriority, depth int, parentURL string, aiScore float64, linkType string) bool {
	canonical, ok := urlkey.Normalise(rawURL, &base)
	if !ok {
		return false
	}
	key := urlkey.Key(canonical)
	count, wasFailed := f.failed[key]
	if !wasFailed || count >= f.maxRetries {
		return false
	}

	f.failed[key] = count + 1
	return f.add(rawURL, base, basePriority, depth, parentURL, aiScore, linkType, "retry", true)
}

// isFailed reports whether key belongs to a URL that has previously
// terminated in processed-failed.
func (f *Frontier) isFailed(key string) bool {
	_, ok := f.failed[key]
	return ok
}

// Stats returns a snapshot of the push-rejection counters.
func (f *Frontier) Stats() Stats { return f.stats }

// Len reports the number of items currently queued.
func (f *Frontier) Len() int { return f.heap.Len() }

// persistedState is the on-disk shape for save/load round-tripping.
type persistedState struct {
	Items     []*Item        `json:"items"`
	Seen      []string       `json:"seen"`
	Processed []string       `json:"processed"`
	Failed    map[string]int `json:"failed"`
	Stats     Stats          `json:"stats"`
}

// SaveState serialises the heap, sets, and counters to path as JSON.
func (f *Frontier) SaveState(path string) error {
	state := persistedState{
		Items:     append([]*Item(nil), f.heap...),
		Seen:      keysOf(f.seen),
		Processed: keysOf(f.processed),
		Failed:    f.failed,
		Stats:     f.stats,
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadState restores a Frontier's heap, sets, and counters from path,
// re-heapifying so successive pops match the order the original held
// (ε=0 determinism, per spec §8's round-trip property).
func (f *Frontier) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}

	f.heap = itemHeap(state.Items)
	heap.Init(&f.heap)

	f.seen = NewSet[string]()
	for _, k := range state.Seen {
		f.seen.Add(k)
	}
	f.processed = NewSet[string]()
	for _, k := range state.Processed {
		f.processed.Add(k)
	}
	f.failed = state.Failed
	if f.failed == nil {
		f.failed = make(map[string]int)
	}
	f.stats = state.Stats

	return nil
}

func keysOf(s Set[string]) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}
