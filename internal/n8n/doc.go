// Package n8n — клиент публичного API n8n.
//
// Клиент ничего не знает о формате ответов: тела возвращаются как есть,
// чтобы API мог отдать их вызывающему без изменений.
//
// Все вызовы идут через circuit breaker (sony/gobreaker): при серии ошибок
// 5xx или сетевых сбоев запросы отклоняются сразу, без похода в сеть.
// Повторов нет.
package n8n
