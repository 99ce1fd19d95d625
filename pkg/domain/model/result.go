package model

import "github.com/launch-dso/hookrelay/pkg/domain/types"

// RuleOutcome is the terminal result of one matched rule.
type RuleOutcome struct {
	Rule        string                `json:"rule"`
	Destination types.DestinationType `json:"destination"`
	Target      string                `json:"target,omitempty"`
	Status      types.RuleStatus      `json:"status"`
	Error       string                `json:"error,omitempty"`
}

// AggregateResult reports the processing of one webhook event: the
// event-level status plus one outcome per matched rule, in rule
// declaration order. A rejected event carries zero outcomes.
type AggregateResult struct {
	Status     types.EventStatus `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	Source     types.SourceType  `json:"source,omitempty"`
	EventKey   string            `json:"event_key,omitempty"`
	Repository string            `json:"repository,omitempty"`
	Outcomes   []RuleOutcome     `json:"outcomes"`
}

// Succeeded reports whether every matched rule succeeded.
func (r *AggregateResult) Succeeded() bool {
	if r.Status != types.EventDone {
		return false
	}
	for _, o := range r.Outcomes {
		if o.Status != types.RuleSucceeded {
			return false
		}
	}
	return true
}
