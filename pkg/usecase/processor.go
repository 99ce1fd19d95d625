package usecase

import (
	"context"
	"net/http"
	"slices"

	"github.com/launch-dso/hookrelay/pkg/domain/interfaces"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/launch-dso/hookrelay/pkg/transform"
	"github.com/launch-dso/hookrelay/pkg/utils/async"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// defaultConcurrency bounds per-event fan-out against downstream APIs.
const defaultConcurrency = 8

// Processor owns an ordered, immutable rule sequence and drives the
// per-event pipeline. Rules are set once at construction; there is no
// mutation path afterwards.
type Processor struct {
	rules       []*model.Rule
	secrets     interfaces.SecretSource
	dispatcher  *Dispatcher
	concurrency int
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithConcurrency sets the per-event dispatch worker limit.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewProcessor creates a processor over an already-constructed rule
// sequence. The slice is copied so later mutation by the caller cannot
// leak into matching.
func NewProcessor(rules []*model.Rule, secrets interfaces.SecretSource, dispatcher *Dispatcher, opts ...ProcessorOption) *Processor {
	p := &Processor{
		rules:       slices.Clone(rules),
		secrets:     secrets,
		dispatcher:  dispatcher,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle processes one raw webhook delivery: classify, signature gate,
// match, then one isolated dispatch unit per matched rule. The result
// carries per-rule outcomes in declaration order; dispatch completion
// order across rules is not synchronized.
func (p *Processor) Handle(ctx context.Context, headers http.Header, body []byte) (*model.AggregateResult, error) {
	logger := ctxlog.From(ctx)

	ev, err := Classify(headers, body)
	if err != nil {
		logger.Warn("webhook rejected", "error", err)
		return &model.AggregateResult{
			Status:   types.EventRejected,
			Reason:   err.Error(),
			Outcomes: []model.RuleOutcome{},
		}, err
	}

	result := &model.AggregateResult{
		Source:     ev.Source,
		EventKey:   ev.EventKey,
		Repository: ev.Repository,
		Outcomes:   []model.RuleOutcome{},
	}

	if err := p.verifyGates(ctx, ev, body); err != nil {
		logger.Warn("webhook rejected at signature gate",
			"delivery", ev.DeliveryID,
			"error", err)
		result.Status = types.EventRejected
		result.Reason = err.Error()
		return result, err
	}

	matched := MatchRules(p.rules, ev)
	logger.Info("webhook classified",
		"delivery", ev.DeliveryID,
		"source", ev.Source,
		"event_key", ev.EventKey,
		"repository", ev.Repository,
		"matched_rules", len(matched),
	)

	// Matched rules have no data dependency on each other: each unit
	// resolves its own transform result, credential and action call.
	outcomes := make([]model.RuleOutcome, len(matched))
	pool := async.New(p.concurrency)
	for i, rule := range matched {
		pool.Go(ctx, func(ctx context.Context) error {
			outcomes[i] = p.runRule(ctx, rule, ev)
			return nil
		})
	}
	pool.Wait()

	result.Status = types.EventDone
	result.Outcomes = outcomes
	return result, nil
}

// verifyGates runs the per-event signature gate: each distinct secret
// referenced by a verify-enabled source of the event's type is checked
// exactly once, before any matching. A mismatch aborts the event with
// zero dispatches.
func (p *Processor) verifyGates(ctx context.Context, ev *model.CanonicalEvent, body []byte) error {
	verified := map[string]bool{}
	for _, rule := range p.rules {
		src := rule.Source()
		if src.Type() != ev.Source || !src.VerifySignature() {
			continue
		}
		ref := src.SecretRef()
		if verified[ref] {
			continue
		}

		secret, err := p.secrets.Resolve(ctx, ref)
		if err != nil {
			return goerr.Wrap(err, "cannot resolve signature secret", goerr.V("secret", ref))
		}
		if err := VerifySignature(secret, body, ev.Signature); err != nil {
			return goerr.Wrap(err, "signature gate failed", goerr.V("secret", ref))
		}
		verified[ref] = true
	}
	return nil
}

// runRule is one isolated dispatch unit. Failures are captured into the
// outcome and never propagate to sibling rules of the same event.
func (p *Processor) runRule(ctx context.Context, rule *model.Rule, ev *model.CanonicalEvent) model.RuleOutcome {
	logger := ctxlog.From(ctx)
	outcome := model.RuleOutcome{
		Rule:        rule.Name(),
		Destination: rule.Destination().Type(),
		Target:      rule.Destination().Target(),
		Status:      types.RuleSucceeded,
	}

	tr, err := transform.Invoke(ctx, rule.Transform(), ev)
	if err != nil {
		outcome.Status = types.RuleFailed
		outcome.Error = err.Error()
		logger.Error("transform failed",
			"rule", rule.Name(),
			"delivery", ev.DeliveryID,
			"error", err)
		return outcome
	}

	if err := p.dispatcher.Dispatch(ctx, rule.Destination(), tr); err != nil {
		outcome.Status = types.RuleFailed
		outcome.Error = err.Error()
		logger.Error("dispatch failed",
			"rule", rule.Name(),
			"delivery", ev.DeliveryID,
			"error", err)
		return outcome
	}

	logger.Info("rule dispatched",
		"rule", rule.Name(),
		"delivery", ev.DeliveryID,
		"destination", outcome.Destination,
		"target", outcome.Target,
	)
	return outcome
}
