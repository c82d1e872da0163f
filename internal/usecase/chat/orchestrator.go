package chat

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/intent"
	"github.com/kailas-cloud/helpdesk/internal/domain/outcome"
	"github.com/kailas-cloud/helpdesk/internal/domain/search/result"
	"github.com/kailas-cloud/helpdesk/internal/logger"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
)

// DefaultFallbackTopK is the lexical result limit when the semantic tier fails.
const DefaultFallbackTopK = 5

// Response is the orchestrator's answer to one query.
type Response struct {
	Text    string
	Outcome outcome.Outcome
	// Degraded is set when results were found but no generated answer could be produced.
	Degraded bool
	// Aborted is set when the caller's context ended before an outcome was
	// reached. The outcome is SystemFailure but it is not counted or logged as one.
	Aborted bool
}

// Tag is the three-valued boundary signal.
func (r *Response) Tag() outcome.Tag { return r.Outcome.Tag() }

// Escalated reports whether the caller should offer human support.
func (r *Response) Escalated() bool { return r.Outcome.Escalated() }

// Options configures an Orchestrator. Zero values take defaults.
type Options struct {
	Rules        []intent.Rule
	Messages     *Messages
	FallbackTopK int
	Logger       *zap.Logger
}

// Orchestrator classifies a query and walks the semantic, lexical and
// static-failure tiers until one of them produces an outcome. It never
// returns an error.
type Orchestrator struct {
	classifier   *intent.Classifier
	semantic     Retriever
	lexical      Fallback
	domain       DomainChecker
	generator    Generator
	messages     Messages
	fallbackTopK int
	logger       *zap.Logger
}

// New creates an Orchestrator. generator may be nil, in which case answers
// are extractive.
func New(semantic Retriever, lexical Fallback, dc DomainChecker, generator Generator, opts Options) *Orchestrator {
	msgs := DefaultMessages()
	if opts.Messages != nil {
		msgs = *opts.Messages
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules(msgs)
	}
	if opts.FallbackTopK <= 0 {
		opts.FallbackTopK = DefaultFallbackTopK
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Orchestrator{
		classifier:   intent.NewClassifier(rules...),
		semantic:     semantic,
		lexical:      lexical,
		domain:       dc,
		generator:    generator,
		messages:     msgs,
		fallbackTopK: opts.FallbackTopK,
		logger:       opts.Logger,
	}
}

// Answer runs the full decision policy for query.
func (o *Orchestrator) Answer(ctx context.Context, query string) Response {
	resp := o.answer(ctx, query)
	if resp.Aborted {
		return resp
	}
	metrics.RetrievalOutcomesTotal.WithLabelValues(string(resp.Outcome.Kind()), string(resp.Outcome.Tier())).Inc()
	return resp
}

func (o *Orchestrator) answer(ctx context.Context, query string) Response {
	log := logger.FromContext(ctx, o.logger)

	if rule, ok := o.classifier.Classify(query); ok {
		oc := outcome.Help()
		if rule.Name == intent.Greeting {
			oc = outcome.Greeting()
		}
		return Response{Text: rule.Response, Outcome: oc}
	}
	if strings.TrimSpace(query) == "" {
		return Response{Text: o.messages.OffTopic, Outcome: outcome.NoMatch(outcome.TierNone, outcome.ReasonOffTopic)}
	}

	results, err := o.semantic.Search(ctx, query)
	if err == nil {
		return o.fromResults(ctx, query, outcome.TierSemantic, results)
	}

	if ctx.Err() != nil {
		return o.aborted(ctx, err)
	}
	if errors.Is(err, domain.ErrSemanticDisabled) {
		log.Debug("semantic tier disabled, using lexical scoring")
	} else {
		log.Warn("semantic retrieval failed, falling back to lexical scoring", zap.Error(err))
	}
	metrics.RetrievalFallbackTotal.Inc()

	results, err = o.lexical.Search(ctx, query, o.fallbackTopK)
	if err != nil {
		if ctx.Err() != nil {
			return o.aborted(ctx, err)
		}
		log.Error("both retrieval tiers failed", zap.Error(err))
		return Response{Text: o.messages.SystemFailure, Outcome: outcome.SystemFailure()}
	}
	return o.fromResults(ctx, query, outcome.TierLexical, results)
}

func (o *Orchestrator) aborted(ctx context.Context, err error) Response {
	logger.FromContext(ctx, o.logger).Debug("request ended before retrieval finished", zap.Error(err))
	return Response{Text: o.messages.SystemFailure, Outcome: outcome.SystemFailure(), Aborted: true}
}

func (o *Orchestrator) fromResults(ctx context.Context, query string, tier outcome.Tier, results []result.Result) Response {
	if len(results) == 0 {
		if o.domain != nil && o.domain.HasVocabulary(query) {
			return Response{Text: o.messages.InDomainNoMatch, Outcome: outcome.NoMatch(tier, outcome.ReasonInDomain)}
		}
		return Response{Text: o.messages.OffTopic, Outcome: outcome.NoMatch(tier, outcome.ReasonOffTopic)}
	}

	text, degraded := o.compose(ctx, query, results)
	return Response{Text: text, Outcome: outcome.Answered(tier, results), Degraded: degraded}
}

func (o *Orchestrator) compose(ctx context.Context, query string, results []result.Result) (string, bool) {
	if o.generator == nil {
		return extractive(results), true
	}
	text, err := o.generator.Generate(ctx, o.messages.SystemPrompt, query, BuildContext(results))
	if err != nil {
		logger.FromContext(ctx, o.logger).Warn("answer generation failed, replying with the top entry", zap.Error(err))
		return extractive(results), true
	}
	return text, false
}
