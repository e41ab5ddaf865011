package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/nodehub/internal/n8n"
	"github.com/shaiso/nodehub/internal/repo"
)

// Сообщения об ошибках, которые видит клиент.
const (
	msgNodeNotFound       = "Node not found"
	msgInvalidNodeID      = "invalid node id"
	msgInternalError      = "internal server error"
	msgUpstreamFailed     = "upstream request failed"
	msgRequestTimedOut    = "request timed out"
	msgInvalidJSONBody    = "request body must be valid JSON"
	msgBodyTooLarge       = "request body too large"
	msgBrokerDisconnected = "broker disconnected"
	msgStoreUnavailable   = "store unavailable"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse — тело ответа 404 для node.
type MessageResponse struct {
	Message string `json:"message"`
}

// upstreamErrorResponse — ошибка n8n, переданная клиенту как есть.
type upstreamErrorResponse struct {
	Error json.RawMessage `json:"error"`
}

// JSON отправляет JSON ответ.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Text отправляет text/plain ответ.
func Text(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// Error отправляет {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// BadRequest отправляет ошибку 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound отправляет 404 {"message": message}.
func NotFound(w http.ResponseWriter, message string) {
	JSON(w, http.StatusNotFound, MessageResponse{Message: message})
}

// InternalError логирует err и отправляет ошибку 500 без деталей.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, msgInternalError)
}

// Passthrough отдаёт успешный ответ n8n без изменений.
func Passthrough(w http.ResponseWriter, resp *n8n.Response) {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}

// HandleRepoError преобразует ошибку хранилища в HTTP ответ.
// Детали ошибки только логируются.
func HandleRepoError(w http.ResponseWriter, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, repo.ErrInvalidID):
		BadRequest(w, msgInvalidNodeID)
	case errors.Is(err, repo.ErrNotFound):
		NotFound(w, msgNodeNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("store query timed out", "error", err)
		Error(w, http.StatusInternalServerError, msgRequestTimedOut)
	default:
		InternalError(w, logger, err)
	}
	return true
}

// HandleUpstreamError преобразует ошибку вызова n8n в HTTP ответ.
//
// Всегда 500. В "error" попадает тело ответа n8n: JSON как есть,
// иначе текстом. Без тела — общее сообщение.
func HandleUpstreamError(w http.ResponseWriter, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, n8n.ErrNotConfigured) {
		Error(w, http.StatusInternalServerError, err.Error())
		return true
	}

	logger.Error("upstream error", "error", err)

	var upErr *n8n.UpstreamError
	if errors.As(err, &upErr) {
		body := bytes.TrimSpace(upErr.Body)
		switch {
		case len(body) == 0:
		case json.Valid(body):
			JSON(w, http.StatusInternalServerError, upstreamErrorResponse{Error: body})
			return true
		default:
			Error(w, http.StatusInternalServerError, string(body))
			return true
		}
	}

	Error(w, http.StatusInternalServerError, msgUpstreamFailed)
	return true
}
