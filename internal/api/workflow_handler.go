package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shaiso/nodehub/internal/mq"
	"github.com/shaiso/nodehub/internal/n8n"
	"github.com/shaiso/nodehub/internal/telemetry"
)

// ListWorkflows проксирует список workflows.
// GET /api/workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	if h.workflows == nil {
		HandleUpstreamError(w, h.log(r), n8n.ErrNotConfigured)
		return
	}

	resp, err := h.workflows.ListWorkflows(r.Context())
	if HandleUpstreamError(w, h.log(r), err) {
		return
	}

	Passthrough(w, resp)
}

// GetCredentialSchema проксирует схему типа credential.
// GET /api/get-credentials-schema/{credentialTypeName}
func (h *Handler) GetCredentialSchema(w http.ResponseWriter, r *http.Request) {
	if h.workflows == nil {
		HandleUpstreamError(w, h.log(r), n8n.ErrNotConfigured)
		return
	}

	resp, err := h.workflows.CredentialSchema(r.Context(), r.PathValue("credentialTypeName"))
	if HandleUpstreamError(w, h.log(r), err) {
		return
	}

	Passthrough(w, resp)
}

// ActivateWorkflow активирует workflow и публикует workflow.activated.
// POST /api/workflows/{id}
func (h *Handler) ActivateWorkflow(w http.ResponseWriter, r *http.Request) {
	if h.workflows == nil {
		HandleUpstreamError(w, h.log(r), n8n.ErrNotConfigured)
		return
	}

	id := r.PathValue("id")
	resp, err := h.workflows.ActivateWorkflow(r.Context(), id)
	if HandleUpstreamError(w, h.log(r), err) {
		return
	}

	if h.events != nil {
		err := h.events.PublishWorkflowActivated(r.Context(), mq.WorkflowActivatedPayload{
			WorkflowID: id,
			RequestID:  telemetry.RequestID(r.Context()),
		})
		if err != nil {
			h.log(r).Warn("failed to publish event", "type", mq.MessageTypeWorkflowActivated, "error", err)
		}
	}

	Passthrough(w, resp)
}

// CreateCredential пересылает тело запроса в n8n и публикует credential.created.
// POST /api/create-credentials
func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	if h.workflows == nil {
		HandleUpstreamError(w, h.log(r), n8n.ErrNotConfigured)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCredentialBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		BadRequest(w, msgInvalidJSONBody)
		return
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		BadRequest(w, msgInvalidJSONBody)
		return
	}

	resp, err := h.workflows.CreateCredential(r.Context(), body)
	if HandleUpstreamError(w, h.log(r), err) {
		return
	}

	if h.events != nil {
		req := parseCredentialRequest(body)
		err := h.events.PublishCredentialCreated(r.Context(), mq.CredentialCreatedPayload{
			Name:      req.Name,
			Type:      req.Type,
			RequestID: telemetry.RequestID(r.Context()),
		})
		if err != nil {
			h.log(r).Warn("failed to publish event", "type", mq.MessageTypeCredentialCreated, "error", err)
		}
	}

	Passthrough(w, resp)
}
