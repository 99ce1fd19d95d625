package usecase

import (
	"context"

	"github.com/launch-dso/hookrelay/pkg/domain/interfaces"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatcher merges transform overrides into a destination, scopes
// credentials for exactly one invocation, and delegates to the action
// provider for the destination's type. It performs no retries.
type Dispatcher struct {
	broker    interfaces.CredentialBroker
	providers map[types.DestinationType]interfaces.ActionProvider
}

// NewDispatcher wires a credential broker and one provider per
// destination type.
func NewDispatcher(broker interfaces.CredentialBroker, providers map[types.DestinationType]interfaces.ActionProvider) *Dispatcher {
	return &Dispatcher{
		broker:    broker,
		providers: providers,
	}
}

// Dispatch runs one destination invocation. The transform result is
// consulted only for the destination's own type; overrides keyed for
// other types are ignored by Merge.
func (d *Dispatcher) Dispatch(ctx context.Context, dst model.Destination, tr *model.TransformResult) error {
	eff := dst.Merge(tr)

	provider, ok := d.providers[eff.Type()]
	if !ok {
		return goerr.Wrap(types.ErrDestinationInvocation, "no action provider for destination type",
			goerr.V("destination", eff.Type()), goerr.V("target", eff.Target()))
	}

	// Credentials are acquired per dispatch and never shared or reused,
	// even when multiple rules target the same role.
	var cred *model.Credential
	if role := eff.Role(); role != nil {
		c, err := d.broker.Assume(ctx, *role)
		if err != nil {
			return goerr.Wrap(types.ErrDestinationInvocation, "credential scoping failed",
				goerr.V("destination", eff.Type()), goerr.V("target", eff.Target()),
				goerr.V("role", role.RoleArn), goerr.V("cause", err.Error()))
		}
		cred = c
	}

	if err := provider.Invoke(ctx, eff, cred); err != nil {
		return goerr.Wrap(types.ErrDestinationInvocation, "action provider call failed",
			goerr.V("destination", eff.Type()), goerr.V("target", eff.Target()),
			goerr.V("cause", err.Error()))
	}
	return nil
}

// NoopProvider serves NoDestination: it takes no action. Useful for
// rules that only need matching visibility, and in tests.
type NoopProvider struct{}

func (NoopProvider) Invoke(ctx context.Context, _ model.Destination, _ *model.Credential) error {
	ctxlog.From(ctx).Debug("no destination configured, no action taken")
	return nil
}
