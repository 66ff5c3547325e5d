package frontier

import "time"

// BasePriority is the coarse priority band a push is seeded with.
type BasePriority int

const (
	PriorityHigh   BasePriority = 1
	PriorityMedium BasePriority = 2
	PriorityLow    BasePriority = 3
)

// baseBonus maps a BasePriority onto the constant added to sort_key (spec
// §4.5): high contributes the most, low the least.
var baseBonus = map[BasePriority]float64{
	PriorityHigh:   3.0,
	PriorityMedium: 2.0,
	PriorityLow:    1.0,
}

// typeBonus is the fixed per-link-type adjustment to sort_key (spec §4.5).
var typeBonus = map[string]float64{
	"admission":     3.0,
	"international": 2.5,
	"financial":     2.0,
	"academic":      1.5,
	"research":      1.0,
	"faculty":       0.5,
	"news":          -0.5,
	"navigation":    -1.0,
	"general":       0,
}

// depthPenalty is the per-level subtraction applied to sort_key. Not given
// a numeric value in the spec; fixed here.
const depthPenalty = 0.3

// Item is one pending URL with its priority metadata (spec §3's
// FrontierItem). Items are immutable once pushed.
type Item struct {
	URL          string       `json:"url"`
	Depth        int          `json:"depth"`
	BasePriority BasePriority `json:"base_priority"`
	AIScore      float64      `json:"ai_score"`
	LinkType     string       `json:"link_type"`
	ParentURL    string       `json:"parent_url"`
	EnqueueTime  time.Time    `json:"enqueue_time"`
	Reason       string       `json:"reason"`
}

// sortKey computes the ascending ordering key from spec §4.5:
//
//	sort_key = -(base_bonus + 2*ai_score + type_bonus - depth_penalty*depth)
func (it *Item) sortKey() float64 {
	bonus := baseBonus[it.BasePriority]
	tBonus := typeBonus[it.LinkType]
	return -(bonus + 2*it.AIScore + tBonus - depthPenalty*float64(it.Depth))
}
