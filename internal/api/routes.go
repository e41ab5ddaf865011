package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
// CORS вешается на весь mux отдельно (см. CORS).
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		RequestID(h.logger),
		Logging(),
		Metrics(h.metrics),
		Timeout(h.requestTimeout),
	)

	// Служебные
	mux.Handle("GET /{$}", chain(http.HandlerFunc(h.Root)))
	mux.Handle("GET /healthz", chain(http.HandlerFunc(h.Healthz)))

	// Nodes
	mux.Handle("GET /get-nodes", chain(http.HandlerFunc(h.ListNodes)))
	mux.Handle("GET /get-nodes-names", chain(http.HandlerFunc(h.ListNodeNames)))
	mux.Handle("GET /get-credentials-names", chain(http.HandlerFunc(h.ListCredentialNames)))
	mux.Handle("GET /get-node/{id}", chain(http.HandlerFunc(h.GetNode)))

	// n8n
	mux.Handle("GET /api/workflows", chain(http.HandlerFunc(h.ListWorkflows)))
	mux.Handle("GET /api/get-credentials-schema/{credentialTypeName}", chain(http.HandlerFunc(h.GetCredentialSchema)))
	mux.Handle("POST /api/workflows/{id}", chain(http.HandlerFunc(h.ActivateWorkflow)))
	mux.Handle("POST /api/create-credentials", chain(http.HandlerFunc(h.CreateCredential)))
}
