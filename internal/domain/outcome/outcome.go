// Package outcome models the terminal result of answering a query.
package outcome

import "github.com/kailas-cloud/helpdesk/internal/domain/search/result"

// Kind is the terminal state of the orchestrator.
type Kind string

const (
	// KindGreeting answered a salutation with the canned welcome.
	KindGreeting Kind = "greeting"
	// KindHelp answered a capabilities question with the canned summary.
	KindHelp Kind = "help"
	// KindAnswered found at least one result.
	KindAnswered Kind = "answered"
	// KindNoMatch searched successfully and found nothing.
	KindNoMatch Kind = "no_match"
	// KindSystemFailure could not search at all.
	KindSystemFailure Kind = "system_failure"
)

// Tag is the three-valued signal exposed to the presentation layer.
type Tag string

const (
	// TagMatched means the answer came from a genuine match or a canned intent.
	TagMatched Tag = "matched"
	// TagNoMatch means retrieval worked but nothing matched.
	TagNoMatch Tag = "no-match"
	// TagFailure means both retrieval tiers failed.
	TagFailure Tag = "failure"
)

// Tier is the retrieval tier that produced the outcome.
type Tier string

const (
	// TierNone means no retrieval ran.
	TierNone Tier = "none"
	// TierSemantic is the vector index tier.
	TierSemantic Tier = "semantic"
	// TierLexical is the keyword fallback tier.
	TierLexical Tier = "lexical"
)

// Reason distinguishes NoMatch variants.
type Reason string

const (
	// ReasonInDomain means the query mentions domain vocabulary.
	ReasonInDomain Reason = "in_domain"
	// ReasonOffTopic means the query is outside the assistant's specialization.
	ReasonOffTopic Reason = "off_topic"
	// ReasonBothTiersFailed means semantic and lexical retrieval both failed.
	ReasonBothTiersFailed Reason = "both_tiers_failed"
)

// Outcome is a tagged variant over Kind (immutable value object).
type Outcome struct {
	kind    Kind
	tier    Tier
	reason  Reason
	results []result.Result
}

// Greeting creates a greeting outcome.
func Greeting() Outcome { return Outcome{kind: KindGreeting, tier: TierNone} }

// Help creates a help outcome.
func Help() Outcome { return Outcome{kind: KindHelp, tier: TierNone} }

// Answered creates an outcome carrying ranked results.
func Answered(tier Tier, results []result.Result) Outcome {
	return Outcome{kind: KindAnswered, tier: tier, results: results}
}

// NoMatch creates an outcome for an empty retrieval.
func NoMatch(tier Tier, reason Reason) Outcome {
	return Outcome{kind: KindNoMatch, tier: tier, reason: reason}
}

// SystemFailure creates an outcome for total retrieval failure.
func SystemFailure() Outcome {
	return Outcome{kind: KindSystemFailure, tier: TierNone, reason: ReasonBothTiersFailed}
}

// Kind returns the terminal state.
func (o *Outcome) Kind() Kind { return o.kind }

// Tier returns the retrieval tier that produced the outcome.
func (o *Outcome) Tier() Tier { return o.tier }

// Reason returns the NoMatch or SystemFailure reason, empty otherwise.
func (o *Outcome) Reason() Reason { return o.reason }

// Results returns the ranked results of an Answered outcome.
func (o *Outcome) Results() []result.Result { return o.results }

// Tag maps the outcome to the presentation-layer signal.
func (o *Outcome) Tag() Tag {
	switch o.kind {
	case KindNoMatch:
		return TagNoMatch
	case KindSystemFailure:
		return TagFailure
	default:
		return TagMatched
	}
}

// Escalated reports whether a human handoff should be offered.
func (o *Outcome) Escalated() bool { return o.kind == KindSystemFailure }
