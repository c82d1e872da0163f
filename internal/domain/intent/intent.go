// Package intent classifies queries with an ordered list of rules.
package intent

import "strings"

// Name identifies a conversational intent.
type Name string

const (
	// Greeting is a salutation without a question.
	Greeting Name = "greeting"
	// Help asks what the assistant can do.
	Help Name = "help"
)

// DefaultGreetings are matched when the query equals or starts with one of them.
var DefaultGreetings = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}

// DefaultHelpPhrases are matched anywhere in the query.
var DefaultHelpPhrases = []string{"help", "what can you do", "what do you know", "how can you help"}

// Predicate tests a normalized (trimmed, lower-case) query.
type Predicate func(query string) bool

// Rule pairs a predicate with its intent and canned response.
type Rule struct {
	Name     Name
	Match    Predicate
	Response string
}

// EqualsOrPrefix matches queries equal to or starting with any phrase.
func EqualsOrPrefix(phrases ...string) Predicate {
	norm := normalizeAll(phrases)
	return func(q string) bool {
		for _, p := range norm {
			if q == p || strings.HasPrefix(q, p) {
				return true
			}
		}
		return false
	}
}

// Contains matches queries containing any phrase.
func Contains(phrases ...string) Predicate {
	norm := normalizeAll(phrases)
	return func(q string) bool {
		for _, p := range norm {
			if strings.Contains(q, p) {
				return true
			}
		}
		return false
	}
}

// Classifier evaluates rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier over a copy of rules.
func NewClassifier(rules ...Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Classify returns the first rule matching query.
func (c *Classifier) Classify(query string) (Rule, bool) {
	q := Normalize(query)
	if q == "" {
		return Rule{}, false
	}
	for _, r := range c.rules {
		if r.Match != nil && r.Match(q) {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules returns the rules in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Normalize trims and lower-cases a query.
func Normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func normalizeAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = Normalize(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
