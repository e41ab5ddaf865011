package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из domain, CLI не импортирует internal) ---

// NodeResponse — полный документ node. Поля кроме перечисленных
// сохраняются в Raw.
type NodeResponse struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"displayName"`
	IconURL     string               `json:"iconUrl,omitempty"`
	Credentials []CredentialResponse `json:"credentials,omitempty"`
	Raw         map[string]any       `json:"-"`
}

// CredentialResponse — элемент credentials node.
type CredentialResponse struct {
	Name string `json:"name"`
}

// NodeSummaryResponse — {id, displayName, iconUrl}.
type NodeSummaryResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IconURL     string `json:"iconUrl,omitempty"`
}

// NamesPageResponse — страница /get-nodes-names.
type NamesPageResponse struct {
	TotalItems  int                   `json:"totalItems"`
	TotalPages  int                   `json:"totalPages"`
	CurrentPage int                   `json:"currentPage"`
	PageSize    int                   `json:"pageSize"`
	Data        []NodeSummaryResponse `json:"data"`
}

// WorkflowResponse — workflow из ответа n8n (только то, что показываем).
type WorkflowResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// PageOpts — параметры пагинации и поиска.
type PageOpts struct {
	Search string
	Page   int
	Limit  int
}

func (o PageOpts) values() url.Values {
	params := url.Values{}
	if o.Search != "" {
		params.Set("search", o.Search)
	}
	if o.Page > 0 {
		params.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		params.Set("limit", strconv.Itoa(o.Limit))
	}
	return params
}

type errorResponse struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// APIError — ответ API со статусом >= 400.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// --- Client ---

// Client — HTTP-клиент для nodehub API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Nodes ---

// ListNodes возвращает полные документы; displayName — точное совпадение.
func (c *Client) ListNodes(ctx context.Context, displayName string) ([]NodeResponse, error) {
	params := url.Values{}
	if displayName != "" {
		params.Set("displayName", displayName)
	}

	var raw []json.RawMessage
	if err := c.get(ctx, "/get-nodes", params, &raw); err != nil {
		return nil, err
	}

	nodes := make([]NodeResponse, len(raw))
	for i, data := range raw {
		if err := json.Unmarshal(data, &nodes[i]); err != nil {
			return nil, fmt.Errorf("failed to decode node: %w", err)
		}
		if err := json.Unmarshal(data, &nodes[i].Raw); err != nil {
			return nil, fmt.Errorf("failed to decode node: %w", err)
		}
	}
	return nodes, nil
}

// ListNodeNames возвращает страницу {id, displayName, iconUrl}.
func (c *Client) ListNodeNames(ctx context.Context, opts PageOpts) (*NamesPageResponse, error) {
	var page NamesPageResponse
	err := c.get(ctx, "/get-nodes-names", opts.values(), &page)
	return &page, err
}

// GetNode возвращает node по ID.
func (c *Client) GetNode(ctx context.Context, id string) (*NodeSummaryResponse, error) {
	var node NodeSummaryResponse
	err := c.get(ctx, "/get-node/"+url.PathEscape(id), nil, &node)
	return &node, err
}

// ListCredentialNames возвращает уникальные имена credentials.
func (c *Client) ListCredentialNames(ctx context.Context, opts PageOpts) ([]string, error) {
	var names []string
	err := c.get(ctx, "/get-credentials-names", opts.values(), &names)
	return names, err
}

// --- n8n ---

// ListWorkflows возвращает workflows. n8n отдаёт {"data": [...]},
// старые версии — просто массив.
func (c *Client) ListWorkflows(ctx context.Context) ([]WorkflowResponse, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/workflows", nil, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Data []WorkflowResponse `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Data, nil
	}

	var list []WorkflowResponse
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to decode workflows: %w", err)
	}
	return list, nil
}

// ActivateWorkflow активирует workflow и возвращает ответ n8n.
func (c *Client) ActivateWorkflow(ctx context.Context, id string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodPost, "/api/workflows/"+url.PathEscape(id), nil, nil, &raw)
	return raw, err
}

// CredentialSchema возвращает JSON-схему типа credential.
func (c *Client) CredentialSchema(ctx context.Context, typeName string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.get(ctx, "/api/get-credentials-schema/"+url.PathEscape(typeName), nil, &raw)
	return raw, err
}

// CreateCredential отправляет body как есть.
func (c *Client) CreateCredential(ctx context.Context, body []byte) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodPost, "/api/create-credentials", nil, body, &raw)
	return raw, err
}

// --- HTTP helpers ---

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, result)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkError(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkError разбирает {"error": ...} и {"message": ...}.
// error может быть строкой или JSON-объектом ошибки n8n.
func checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return apiErr
	}

	switch {
	case len(er.Error) > 0:
		var msg string
		if json.Unmarshal(er.Error, &msg) == nil {
			apiErr.Message = msg
		} else {
			apiErr.Message = string(er.Error)
		}
	case er.Message != "":
		apiErr.Message = er.Message
	}
	return apiErr
}
