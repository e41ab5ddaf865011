package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /get-nodes", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"n1","displayName":"Slack","credentials":[{"name":"slackApi"}],"version":2}]`))
	})
	mux.HandleFunc("GET /get-nodes-names", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") != "sl" || q.Get("page") != "2" || q.Has("limit") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"unexpected query ` + r.URL.RawQuery + `"}`))
			return
		}
		w.Write([]byte(`{"totalItems":11,"totalPages":2,"currentPage":2,"pageSize":10,"data":[{"id":"n1","displayName":"Slack"}]}`))
	})
	mux.HandleFunc("GET /get-node/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Node not found"}`))
	})
	mux.HandleFunc("GET /get-credentials-names", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["slackApi","githubApi"]`))
	})
	mux.HandleFunc("GET /api/workflows", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"1","name":"Daily","active":true}]}`))
	})
	mux.HandleFunc("GET /api/get-credentials-schema/{type}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"unknown type"}}`))
	})
	mux.HandleFunc("POST /api/workflows/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"` + r.PathValue("id") + `","active":true}`))
	})
	mux.HandleFunc("POST /api/create-credentials", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testOutput(jsonMode bool) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Output{jsonMode: jsonMode, w: &stdout, errW: &stderr}, &stdout, &stderr
}

func TestClient_ListNodesKeepsRawFields(t *testing.T) {
	c := NewClient(newTestServer(t).URL)

	nodes, err := c.ListNodes(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0].DisplayName != "Slack" || nodes[0].Credentials[0].Name != "slackApi" {
		t.Errorf("unexpected nodes: %+v", nodes)
	}
	if nodes[0].Raw["version"] != float64(2) {
		t.Errorf("expected raw fields, got %v", nodes[0].Raw)
	}
}

func TestClient_Errors(t *testing.T) {
	c := NewClient(newTestServer(t).URL)

	_, err := c.GetNode(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Node not found" {
		t.Errorf("unexpected error: %v", err)
	}

	_, err = c.CredentialSchema(context.Background(), "nope")
	if !errors.As(err, &apiErr) || apiErr.Message != `{"message":"unknown type"}` {
		t.Errorf("expected upstream JSON in message, got %v", err)
	}
}

func TestClient_ListWorkflows(t *testing.T) {
	c := NewClient(newTestServer(t).URL)

	wfs, err := c.ListWorkflows(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wfs) != 1 || wfs[0].Name != "Daily" || !wfs[0].Active {
		t.Errorf("unexpected workflows: %+v", wfs)
	}
}

func TestNodeNamesCmd_Table(t *testing.T) {
	srv := newTestServer(t)
	out, stdout, stderr := testOutput(false)

	cmd := NewNodeCmd(func() *Client { return NewClient(srv.URL) }, func() *Output { return out })
	cmd.SetArgs([]string{"names", "--search", "sl", "--page", "2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[2], "Slack") {
		t.Errorf("unexpected table:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "page 2 of 2 (11 items)") {
		t.Errorf("expected page footer, got %q", stderr.String())
	}
}

func TestCredentialNamesCmd_JSON(t *testing.T) {
	srv := newTestServer(t)
	out, stdout, _ := testOutput(true)

	cmd := NewCredentialCmd(func() *Client { return NewClient(srv.URL) }, func() *Output { return out })
	cmd.SetArgs([]string{"names"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	if err := json.Unmarshal(stdout.Bytes(), &names); err != nil {
		t.Fatalf("expected JSON output, got %q", stdout.String())
	}
	if strings.Join(names, ",") != "slackApi,githubApi" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestCredentialCreateCmd_Stdin(t *testing.T) {
	srv := newTestServer(t)
	out, stdout, stderr := testOutput(false)

	cmd := NewCredentialCmd(func() *Client { return NewClient(srv.URL) }, func() *Output { return out })
	cmd.SetIn(strings.NewReader(`{"name":"gh","type":"githubApi"}`))
	cmd.SetArgs([]string{"create", "-f", "-"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), `"type": "githubApi"`) {
		t.Errorf("expected echoed credential, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Credential created") {
		t.Errorf("expected message on stderr, got %q", stderr.String())
	}
}

func TestWorkflowListCmd(t *testing.T) {
	srv := newTestServer(t)
	out, stdout, _ := testOutput(false)

	cmd := NewWorkflowCmd(func() *Client { return NewClient(srv.URL) }, func() *Output { return out })
	cmd.SetArgs([]string{"list"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Daily") || !strings.Contains(stdout.String(), "true") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}

func TestOutput_Error(t *testing.T) {
	apiErr := fmt.Errorf("get node: %w", &APIError{StatusCode: http.StatusNotFound, Message: "Node not found"})

	out, _, stderr := testOutput(false)
	out.Error(apiErr)
	if got := stderr.String(); got != "Error: get node: HTTP 404: Node not found\n" {
		t.Errorf("unexpected text error: %q", got)
	}

	out, _, stderr = testOutput(true)
	out.Error(apiErr)
	var report struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal(stderr.Bytes(), &report); err != nil {
		t.Fatalf("expected JSON error, got %q", stderr.String())
	}
	if report.Error != "Node not found" || report.Status != http.StatusNotFound {
		t.Errorf("unexpected report: %+v", report)
	}

	out, _, stderr = testOutput(true)
	out.Error(errors.New("dial tcp: refused"))
	if got := strings.TrimSpace(stderr.String()); got != `{"error":"dial tcp: refused"}` {
		t.Errorf("unexpected report: %q", got)
	}
}

func TestWorkflowActivateCmd_JSONModeIsQuiet(t *testing.T) {
	srv := newTestServer(t)
	out, stdout, stderr := testOutput(true)

	cmd := NewWorkflowCmd(func() *Client { return NewClient(srv.URL) }, func() *Output { return out })
	cmd.SetArgs([]string{"activate", "wf1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), `"id": "wf1"`) {
		t.Errorf("expected activation response, got %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("JSON mode should keep stderr clean, got %q", stderr.String())
	}
}
