package interfaces

import (
	"context"

	"github.com/launch-dso/hookrelay/pkg/domain/model"
)

// SecretSource resolves an opaque secret locator to raw secret bytes.
type SecretSource interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

// CredentialBroker exchanges a role scope for temporary credentials.
// Each dispatch acquires its own credential; brokers must not cache
// across calls.
type CredentialBroker interface {
	Assume(ctx context.Context, role model.RoleSpec) (*model.Credential, error)
}

// ActionProvider performs the external call for one destination type.
// The destination passed to Invoke is already merged with transform
// overrides; cred is nil only for credential-free destinations.
type ActionProvider interface {
	Invoke(ctx context.Context, dst model.Destination, cred *model.Credential) error
}
