package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/launch-dso/hookrelay/pkg/domain/interfaces"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// WebhookHandler receives SCM webhook deliveries and hands the raw
// headers and body to the processor. Signature verification happens
// inside the processor, per rule-source configuration, not here.
type WebhookHandler struct {
	processor interfaces.Processor
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(processor interfaces.Processor) *WebhookHandler {
	return &WebhookHandler{processor: processor}
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	result, err := h.processor.Handle(ctx, r.Header, body)
	if err != nil {
		// Rejection before matching: the aggregate result still carries
		// the status and reason for the caller.
		status := http.StatusBadRequest
		if errors.Is(err, types.ErrSignatureMismatch) {
			status = http.StatusUnauthorized
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if encErr := json.NewEncoder(w).Encode(result); encErr != nil {
			logger.Error("Failed to encode rejection response", "error", encErr)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.Error("Failed to encode success response", "error", err)
	}
}
