package result

import (
	"math"
	"sort"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
)

// Result is a single search hit.
type Result struct {
	item  content.Item
	score float64
}

// New creates a search result. Negative scores are clamped to zero.
func New(item content.Item, score float64) Result {
	return Result{item: item, score: max(0, score)}
}

// Item returns the matched content item.
func (r *Result) Item() content.Item { return r.item }

// ID returns the content item identifier.
func (r *Result) ID() string { return r.item.ID() }

// Score returns the relevance score.
func (r *Result) Score() float64 { return r.score }

// Confidence returns the score as a rounded percentage.
func (r *Result) Confidence() int { return int(math.Round(r.score * 100)) }

// SortByScore orders results by descending score, keeping input order for ties.
func SortByScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
}

// Truncate returns at most k results; k <= 0 yields an empty slice.
func Truncate(results []Result, k int) []Result {
	if k <= 0 {
		return []Result{}
	}
	if len(results) > k {
		return results[:k]
	}
	return results
}
