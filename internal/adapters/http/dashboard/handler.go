package dashboard

import (
	"log/slog"
	"net/http"

	appdashboard "crediadmin/internal/application/dashboard"
	httpx "crediadmin/internal/infrastructure/http"
)

type Handler struct {
	service *appdashboard.Service
	log     *slog.Logger
}

func NewHandler(service *appdashboard.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Summary handles GET /api/v1/dashboard.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		httpx.WriteInternal(w, err, h.log)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary, h.log)
}
