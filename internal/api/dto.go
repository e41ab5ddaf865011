package api

import "encoding/json"

// maxCredentialBody — предел тела POST /api/create-credentials.
const maxCredentialBody = 1 << 20

// credentialRequest — поля тела создания credential, нужные для события.
// Остальное (включая data с секретами) уходит в n8n без разбора.
type credentialRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func parseCredentialRequest(body []byte) credentialRequest {
	var req credentialRequest
	json.Unmarshal(body, &req)
	return req
}
