package model

import (
	"encoding/json"
	"time"

	"github.com/launch-dso/hookrelay/pkg/domain/types"
)

// CanonicalEvent is the normalized, source-agnostic form of a webhook
// delivery. It is immutable once classified and lives for one request.
type CanonicalEvent struct {
	Source     types.SourceType
	Scope      string // GitHub organization or Bitbucket project key
	Repository string
	EventKey   string // compound key such as "pull_request.closed" or "pr:merged"
	DeliveryID string
	Signature  string // raw signature header value, "" when absent
	RawPayload []byte
	Payload    any // typed SDK payload when available, decoded map otherwise
	ReceivedAt time.Time
}

// AsMap renders the event as a generic structured mapping for map-typed
// transforms and expression activations. The payload is re-decoded from
// the raw body so that every value is JSON-native; the signature and raw
// bytes are not included.
func (e *CanonicalEvent) AsMap() map[string]any {
	var payload map[string]any
	_ = json.Unmarshal(e.RawPayload, &payload)
	return map[string]any{
		"source":     string(e.Source),
		"scope":      e.Scope,
		"repository": e.Repository,
		"event_key":  e.EventKey,
		"delivery":   e.DeliveryID,
		"payload":    payload,
	}
}
