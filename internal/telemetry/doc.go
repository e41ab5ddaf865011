// Package telemetry обеспечивает наблюдаемость сервиса.
//
// Включает:
//   - logging.go — structured logging через slog, request_id в контексте
//   - metrics.go — Prometheus метрики HTTP и вызовов внешнего API
//
// Метрики экспортируются на /metrics endpoint.
package telemetry
