// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (сервис запросов, клиент n8n, publisher, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (recovery, request id, logging, metrics, timeout, CORS)
//   - response.go         — JSON-ответы и преобразование ошибок в HTTP
//   - dto.go              — тела запросов
//   - node_handler.go     — каталог nodes
//   - workflow_handler.go — прокси к API n8n
//   - health_handler.go   — / и /healthz
//
// Формы ошибок совместимы с существующими клиентами:
// {"error": "..."} для 4xx/5xx и {"message": "Node not found"} для 404.
package api
