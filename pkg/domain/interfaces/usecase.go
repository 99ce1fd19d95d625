package interfaces

import (
	"context"
	"net/http"

	"github.com/launch-dso/hookrelay/pkg/domain/model"
)

// Processor drives the per-event pipeline: classify, verify, match, and
// dispatch each matched rule.
type Processor interface {
	// Handle processes one raw webhook delivery. The returned result is
	// always non-nil; the error is non-nil only when the event was
	// rejected before matching (classification or signature failure),
	// so callers can map it to a protocol response. Per-rule failures
	// are reported in the result, never as an error.
	Handle(ctx context.Context, headers http.Header, body []byte) (*model.AggregateResult, error)
}
