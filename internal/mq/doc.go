// Package mq публикует события аудита в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, очереди аудита и bindings
//   - publisher.go  — публикация событий
//
// Типы сообщений:
//   - workflow.activated — workflow активирован через API
//   - credential.created — credential создан через API
//
// Exchanges:
//   - nodehub.events — события API (direct)
//
// Публикация необязательна: без AMQP_URL publisher не создаётся.
package mq
