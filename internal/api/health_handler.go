package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const healthPingTimeout = 2 * time.Second

// Root — проверка, что процесс жив.
// GET /
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	Text(w, http.StatusOK, "Server is running")
}

// Healthz проверяет доступность хранилища.
// Потеря брокера не делает сервис нездоровым: запросы обслуживаются,
// события теряются до reconnect. Об этом сообщает тело ответа.
// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		if err := h.health.Ping(ctx); err != nil {
			h.log(r).Warn("health check failed", "error", err)
			Text(w, http.StatusServiceUnavailable, msgStoreUnavailable)
			return
		}
	}

	status := fmt.Sprintf("ok %s", time.Since(h.startTime).Round(time.Second))
	if h.broker != nil && !h.broker.IsConnected() {
		h.log(r).Warn("health check: broker disconnected")
		status += ", " + msgBrokerDisconnected
	}
	Text(w, http.StatusOK, status)
}
