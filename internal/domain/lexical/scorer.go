// Package lexical implements the deterministic keyword scorer used for the
// fallback tier and the general corpus search.
package lexical

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/helpdesk/internal/domain/content"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
)

// minTokenLen is the shortest query token that takes part in token matching.
const minTokenLen = 3

// Weights are the per-signal score contributions.
type Weights struct {
	TitleExact float64 // full query is a substring of the title
	BodyExact  float64 // full query is a substring of the body
	TitleToken float64 // per query token found in the title
	BodyToken  float64 // per query token found in the body
	Vocabulary float64 // per vocabulary term found in the query and the item
	GuideBoost float64 // documentation items for how/guide/process queries
}

// DefaultWeights returns the reference weights.
func DefaultWeights() Weights {
	return Weights{
		TitleExact: 3.0,
		BodyExact:  2.0,
		TitleToken: 1.0,
		BodyToken:  0.5,
		Vocabulary: 0.3,
	}
}

// DefaultVocabulary is the domain term list of the booking API.
var DefaultVocabulary = []string{
	"api", "booking", "payment", "passenger", "flight", "availability",
	"token", "error", "authentication", "session", "seat", "baggage",
	"currency", "infant", "ssr", "endpoint", "request", "response",
	"travel", "document", "refund", "cancel",
}

var guideTerms = []string{"how", "guide", "process"}

// Scorer ranks content items against a query. It holds no mutable state
// and is safe for concurrent use.
type Scorer struct {
	weights    Weights
	vocabulary []string
}

// New creates a Scorer. A nil vocabulary selects DefaultVocabulary.
func New(w Weights, vocabulary []string) *Scorer {
	if vocabulary == nil {
		vocabulary = DefaultVocabulary
	}
	vocab := make([]string, 0, len(vocabulary))
	for _, term := range vocabulary {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			vocab = append(vocab, term)
		}
	}
	return &Scorer{weights: w, vocabulary: vocab}
}

// Weights returns the configured weights.
func (s *Scorer) Weights() Weights { return s.weights }

// Vocabulary returns the normalized vocabulary terms.
func (s *Scorer) Vocabulary() []string { return s.vocabulary }

// Score returns the relevance of item for query; 0 means no match.
// A blank query scores 0 against every item.
func (s *Scorer) Score(query string, item *content.Item) float64 {
	q := normalize(query)
	if q == "" {
		return 0
	}
	title := strings.ToLower(item.Title())
	body := strings.ToLower(item.Body())

	var score float64
	if strings.Contains(title, q) {
		score += s.weights.TitleExact
	}
	if strings.Contains(body, q) {
		score += s.weights.BodyExact
	}

	for _, tok := range tokens(q) {
		if strings.Contains(title, tok) {
			score += s.weights.TitleToken
		}
		if strings.Contains(body, tok) {
			score += s.weights.BodyToken
		}
	}

	for _, term := range s.vocabulary {
		if strings.Contains(q, term) && (strings.Contains(title, term) || strings.Contains(body, term)) {
			score += s.weights.Vocabulary
		}
	}

	if s.weights.GuideBoost > 0 && item.Kind() == content.KindDocumentation && containsAny(q, guideTerms) {
		score += s.weights.GuideBoost
	}

	return score
}

// Rank scores every item, drops non-matches, orders by descending score
// (ties keep corpus order) and truncates to topK.
func (s *Scorer) Rank(query string, items []content.Item, topK int) []result.Result {
	if topK <= 0 {
		return []result.Result{}
	}

	out := make([]result.Result, 0, min(len(items), topK))
	for i := range items {
		if score := s.Score(query, &items[i]); score > 0 {
			out = append(out, result.New(items[i], score))
		}
	}

	result.SortByScore(out)
	return result.Truncate(out, topK)
}

// HasVocabulary reports whether query mentions any vocabulary term.
func (s *Scorer) HasVocabulary(query string) bool {
	return containsAny(normalize(query), s.vocabulary)
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// tokens splits a normalized query on whitespace and drops short tokens.
// Repeated tokens are kept and score once per occurrence.
func tokens(q string) []string {
	fields := strings.Fields(q)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLen {
			out = append(out, f)
		}
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
