package model

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Rule binds a source criteria set, a bound transform and a destination.
// Rules are immutable after construction; NewRule fails fast on any
// defect so that bad rules never reach live traffic.
type Rule struct {
	name        string
	source      Source
	transform   TransformFunc
	destination Destination
}

// NewRule builds a rule from already-validated parts. The transform must
// be produced by the transform package (contract validation and
// reference resolution happen there, before this call); nil selects the
// identity transform, which yields no overrides.
func NewRule(name string, src Source, fn TransformFunc, dst Destination) (*Rule, error) {
	if src == nil {
		return nil, goerr.New("rule requires a source", goerr.V("rule", name))
	}
	if dst == nil {
		return nil, goerr.New("rule requires a destination", goerr.V("rule", name))
	}
	if err := src.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid rule source", goerr.V("rule", name))
	}
	if err := dst.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid rule destination", goerr.V("rule", name))
	}
	if fn == nil {
		fn = identityTransform
	}
	return &Rule{
		name:        name,
		source:      src,
		transform:   fn,
		destination: dst,
	}, nil
}

func identityTransform(_ context.Context, _ *CanonicalEvent) (*TransformResult, error) {
	return &TransformResult{}, nil
}

func (r *Rule) Name() string             { return r.name }
func (r *Rule) Source() Source           { return r.source }
func (r *Rule) Destination() Destination { return r.destination }

// Transform returns the bound transform callable.
func (r *Rule) Transform() TransformFunc { return r.transform }

// Match reports whether the rule's source criteria admit the event.
func (r *Rule) Match(ev *CanonicalEvent) bool {
	return r.source.Match(ev)
}
