package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaiso/nodehub/internal/mq"
	"github.com/shaiso/nodehub/internal/n8n"
	"github.com/shaiso/nodehub/internal/query"
	"github.com/shaiso/nodehub/internal/telemetry"
)

// WorkflowAPI — операции n8n, которые проксирует API.
type WorkflowAPI interface {
	ListWorkflows(ctx context.Context) (*n8n.Response, error)
	CredentialSchema(ctx context.Context, typeName string) (*n8n.Response, error)
	ActivateWorkflow(ctx context.Context, id string) (*n8n.Response, error)
	CreateCredential(ctx context.Context, body []byte) (*n8n.Response, error)
}

// EventPublisher — публикация событий аудита.
type EventPublisher interface {
	PublishWorkflowActivated(ctx context.Context, payload mq.WorkflowActivatedPayload) error
	PublishCredentialCreated(ctx context.Context, payload mq.CredentialCreatedPayload) error
}

// Pinger — проверка доступности хранилища для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Broker — состояние соединения с брокером событий для /healthz.
type Broker interface {
	IsConnected() bool
}

const defaultRequestTimeout = 15 * time.Second

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	service        *query.Service
	workflows      WorkflowAPI
	events         EventPublisher
	health         Pinger
	broker         Broker
	metrics        *telemetry.Metrics
	logger         *slog.Logger
	requestTimeout time.Duration
	startTime      time.Time
}

// Config — конфигурация для создания Handler.
//
// Workflows, Events, Health, Broker и Metrics необязательны: без Workflows
// маршруты /api/* отвечают 500, без Events события не публикуются.
type Config struct {
	Service        *query.Service
	Workflows      WorkflowAPI
	Events         EventPublisher
	Health         Pinger
	Broker         Broker
	Metrics        *telemetry.Metrics
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	return &Handler{
		service:        cfg.Service,
		workflows:      cfg.Workflows,
		events:         cfg.Events,
		health:         cfg.Health,
		broker:         cfg.Broker,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		requestTimeout: cfg.RequestTimeout,
		startTime:      time.Now(),
	}
}

// log возвращает логгер запроса (с request_id), если он есть.
func (h *Handler) log(r *http.Request) *slog.Logger {
	if logger, ok := r.Context().Value(telemetry.CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return h.logger
}
