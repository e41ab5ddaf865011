package n8n

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shaiso/nodehub/internal/telemetry"
	"github.com/sony/gobreaker"
)

const (
	// DefaultAPIKeyHeader — заголовок, в котором n8n ждёт ключ.
	DefaultAPIKeyHeader = "X-N8N-API-KEY"

	defaultTimeout  = 30 * time.Second
	maxResponseBody = 10 * 1024 * 1024 // 10 MB
)

// Имена операций для метрик и ошибок.
const (
	OpListWorkflows    = "list_workflows"
	OpCredentialSchema = "credential_schema"
	OpActivateWorkflow = "activate_workflow"
	OpCreateCredential = "create_credential"
)

// Исходы вызова для метрик.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeRejected = "rejected"
)

// Response — успешный ответ n8n без разбора.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Config — параметры клиента.
type Config struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	Timeout      time.Duration

	// HTTPClient — опционально, для тестов.
	HTTPClient *http.Client
	Metrics    *telemetry.Metrics
	Logger     *slog.Logger
}

// Client — клиент API n8n.
type Client struct {
	baseURL   string
	apiKey    string
	keyHeader string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	maxBody   int64
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// NewClient создаёт клиент. BaseURL обязателен.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse n8n base url: %w", err)
	}

	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = DefaultAPIKeyHeader
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger.With("component", "n8n")

	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		keyHeader: cfg.APIKeyHeader,
		http:      httpClient,
		breaker:   newBreaker(logger),
		maxBody:   maxResponseBody,
		metrics:   cfg.Metrics,
		logger:    logger,
	}, nil
}

// newBreaker — breaker открывается при 5 подряд сбоях или
// доле сбоев >= 60% на 10+ запросах. Ответы 4xx и отмена запроса
// вызывающим сбоем не считаются.
func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "n8n",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var upErr *UpstreamError
			return errors.As(err, &upErr) && upErr.clientError()
		},
	})
}

// ListWorkflows — GET /workflows.
func (c *Client) ListWorkflows(ctx context.Context) (*Response, error) {
	return c.call(ctx, OpListWorkflows, http.MethodGet, "/workflows", nil)
}

// CredentialSchema — GET /credentials/schema/{typeName}.
func (c *Client) CredentialSchema(ctx context.Context, typeName string) (*Response, error) {
	return c.call(ctx, OpCredentialSchema, http.MethodGet, "/credentials/schema/"+url.PathEscape(typeName), nil)
}

// ActivateWorkflow — POST /workflows/{id}/activate.
func (c *Client) ActivateWorkflow(ctx context.Context, id string) (*Response, error) {
	return c.call(ctx, OpActivateWorkflow, http.MethodPost, "/workflows/"+url.PathEscape(id)+"/activate", nil)
}

// CreateCredential — POST /credentials с телом вызывающего.
func (c *Client) CreateCredential(ctx context.Context, body []byte) (*Response, error) {
	return c.call(ctx, OpCreateCredential, http.MethodPost, "/credentials", body)
}

func (c *Client) call(ctx context.Context, op, method, path string, body []byte) (*Response, error) {
	start := time.Now()

	result, err := c.breaker.Execute(func() (any, error) {
		return c.do(ctx, op, method, path, body)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.ObserveUpstream(op, outcomeRejected, time.Since(start))
		c.logger.Warn("n8n call rejected by circuit breaker", "operation", op)
		return nil, &UpstreamError{Operation: op, Err: err}
	case err != nil:
		c.metrics.ObserveUpstream(op, outcomeError, time.Since(start))
		c.logger.Warn("n8n call failed", "operation", op, "error", err)
		return nil, err
	}

	c.metrics.ObserveUpstream(op, outcomeOK, time.Since(start))
	return result.(*Response), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, &UpstreamError{Operation: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &UpstreamError{Operation: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > c.maxBody {
		// Обрезанный JSON клиенту не отдаём.
		return nil, &UpstreamError{
			Operation: op,
			Err:       fmt.Errorf("%w: HTTP %d, more than %d bytes", ErrResponseTooLarge, resp.StatusCode, c.maxBody),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Operation: op, StatusCode: resp.StatusCode, Body: data}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
