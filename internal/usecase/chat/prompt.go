package chat

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
)

// ContextTopK is the number of results handed to the generator.
const ContextTopK = 5

// BuildContext renders the numbered source blocks for the generator.
// Structured FAQ bodies already carry their Q:/A: lines; other items are
// labelled with title, kind and content.
func BuildContext(results []result.Result) string {
	results = result.Truncate(results, ContextTopK)
	blocks := make([]string, 0, len(results))
	for i := range results {
		r := &results[i]
		it := r.Item()

		var b strings.Builder
		fmt.Fprintf(&b, "Source %d (Confidence: %d%%):\n", i+1, r.Confidence())
		if it.Kind() == content.KindFAQ {
			b.WriteString(it.Body())
		} else {
			fmt.Fprintf(&b, "Title: %s\nType: %s\nContent: %s", it.Title(), it.Kind(), it.Body())
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// extractive answers from the top result when no generator is available.
func extractive(results []result.Result) string {
	top := results[0].Item()

	var b strings.Builder
	b.WriteString("Here is the most relevant entry from the documentation:\n\n")
	if t := top.Title(); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(top.Body()))
	if ref := top.ExternalRef(); ref != "" {
		b.WriteString("\n\nSource: ")
		b.WriteString(ref)
	}
	return b.String()
}
