package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shaiso/nodehub/internal/api"
	"github.com/shaiso/nodehub/internal/config"
	"github.com/shaiso/nodehub/internal/mq"
	"github.com/shaiso/nodehub/internal/n8n"
	"github.com/shaiso/nodehub/internal/query"
	"github.com/shaiso/nodehub/internal/repo"
	"github.com/shaiso/nodehub/internal/telemetry"
)

const storeOpenTimeout = 10 * time.Second

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting nodehub-api")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Хранилище должно быть готово до старта HTTP сервера
	openCtx, openCancel := context.WithTimeout(context.Background(), storeOpenTimeout)
	store, err := repo.Open(openCtx, repo.OpenOptions{DSN: cfg.DBURL, Database: cfg.DBName})
	openCancel()
	if err != nil {
		logger.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to store")

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	handlerCfg := api.Config{
		Service:        query.NewService(store),
		Health:         store,
		Metrics:        metrics,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	}

	if cfg.N8N.Enabled() {
		client, err := n8n.NewClient(n8n.Config{
			BaseURL:      cfg.N8N.BaseURL,
			APIKey:       cfg.N8N.APIKey,
			APIKeyHeader: cfg.N8N.APIKeyHeader,
			Timeout:      cfg.N8N.Timeout,
			Metrics:      metrics,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("failed to create n8n client", "error", err)
			os.Exit(1)
		}
		handlerCfg.Workflows = client
	} else {
		logger.Warn("N8N_BASE_URL is not set, workflow routes are disabled")
	}

	// События аудита — только если задан AMQP_URL
	var mqConn *mq.Connection
	if cfg.AMQPURL != "" {
		mqConn, err = mq.NewConnection(cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		if err := mq.SetupTopology(context.Background(), mqConn); err != nil {
			logger.Error("failed to setup topology", "error", err)
			os.Exit(1)
		}
		handlerCfg.Events = mq.NewPublisher(mqConn, logger)
		handlerCfg.Broker = mqConn
	}

	handler := api.NewHandler(handlerCfg)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.CORS(cfg.CORSAllowedOrigins)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	if mqConn != nil {
		if err := mqConn.Close(); err != nil {
			logger.Error("failed to close RabbitMQ connection", "error", err)
		}
	}

	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("failed to close store", "error", err)
	}

	logger.Info("stopped")
}
