package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors. Call sites wrap these with goerr.Wrap and attach
// identifying values; callers discriminate with errors.Is.
var (
	// ErrUnrecognizedSource: no known source signature in the request headers
	ErrUnrecognizedSource = goerr.New("unrecognized webhook source")

	// ErrSignatureMismatch: HMAC over the raw body does not match the
	// signature header
	ErrSignatureMismatch = goerr.New("webhook signature mismatch")

	// ErrTransformContract: a transform callable does not satisfy the
	// transform contract. Raised at rule construction only.
	ErrTransformContract = goerr.New("transform contract violation")

	// ErrTransformResolve: a transform path does not resolve to a
	// registered callable. Raised at rule construction only.
	ErrTransformResolve = goerr.New("transform reference not resolvable")

	// ErrTransformExecution: user transform code failed or panicked during
	// invocation. Isolated to the rule that owns the transform.
	ErrTransformExecution = goerr.New("transform execution failed")

	// ErrDestinationInvocation: the downstream action call failed.
	// Isolated to the rule that owns the destination.
	ErrDestinationInvocation = goerr.New("destination invocation failed")
)
