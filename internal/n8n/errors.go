package n8n

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream — базовая ошибка для всех сбоев вызова n8n.
	ErrUpstream = errors.New("upstream request failed")

	// ErrNotConfigured — N8N_BASE_URL не задан.
	ErrNotConfigured = errors.New("workflow API is not configured")

	// ErrResponseTooLarge — тело ответа n8n больше лимита клиента.
	ErrResponseTooLarge = errors.New("response body exceeds limit")
)

// UpstreamError — неуспешный вызов n8n.
//
// StatusCode равен 0, если ответа не было (сеть, таймаут, открытый breaker).
// Body — сырое тело ответа, если он был.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("n8n %s: HTTP %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("n8n %s: %v", e.Operation, e.Err)
}

// Is позволяет проверять errors.Is(err, ErrUpstream).
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// clientError — ответ 4xx: ошибка вызывающего, не повод открывать breaker.
func (e *UpstreamError) clientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
