// Package batch models bulk indexing: items paired with their embeddings
// and the per-item outcome of pushing them into the vector index.
package batch

import "github.com/kailas-cloud/helpdesk/internal/domain/content"

// Record pairs a corpus item with its embedding.
type Record struct {
	Item   content.Item
	Vector []float32
}

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusIndexed ItemStatus = "indexed"
	StatusFailed  ItemStatus = "failed"
)

// Result is the outcome of indexing one item.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewIndexed creates a successful result.
func NewIndexed(id string) Result { return Result{id: id, status: StatusIndexed} }

// NewFailed creates a failed result.
func NewFailed(id string, err error) Result { return Result{id: id, status: StatusFailed, err: err} }

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary aggregates a run's results.
type Summary struct {
	Indexed  int
	Failed   int
	Failures []Result
}

// Summarize counts results by status, keeping failures in input order.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.status {
		case StatusIndexed:
			s.Indexed++
		case StatusFailed:
			s.Failed++
			s.Failures = append(s.Failures, r)
		}
	}
	return s
}

// IndexedIDs returns the ids of successfully indexed items.
func IndexedIDs(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		if r.status == StatusIndexed {
			out = append(out, r.id)
		}
	}
	return out
}
