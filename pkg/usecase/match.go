package usecase

import "github.com/launch-dso/hookrelay/pkg/domain/model"

// MatchRules returns every rule whose source criteria admit the event,
// preserving declaration order. Matching is pure: repeated calls with
// the same inputs yield identical ordered results.
func MatchRules(rules []*model.Rule, ev *model.CanonicalEvent) []*model.Rule {
	var matched []*model.Rule
	for _, rule := range rules {
		if rule.Match(ev) {
			matched = append(matched, rule)
		}
	}
	return matched
}
