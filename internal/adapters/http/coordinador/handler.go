package coordinador

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appcoordinador "crediadmin/internal/application/coordinador"
	"crediadmin/internal/core/coordinador"
	httpx "crediadmin/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the coordinator service.
type Handler struct {
	service *appcoordinador.Service
	log     *slog.Logger
}

func NewHandler(service *appcoordinador.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	if list == nil {
		list = []coordinador.Coordinador{}
	}
	httpx.WriteJSON(w, http.StatusOK, list, h.log)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req appcoordinador.Request
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
		return
	}

	id, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"id": id}, h.log)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c, h.log)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req appcoordinador.Request
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
		return
	}

	if err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleError maps domain errors to HTTP status codes.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var verr *appcoordinador.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, verr.Errors, h.log)
	case errors.Is(err, appcoordinador.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
	case errors.Is(err, coordinador.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.MessageNotFound, []string{err.Error()}, h.log)
	case errors.Is(err, coordinador.ErrDuplicateEmail), errors.Is(err, coordinador.ErrHasCreditos):
		httpx.WriteError(w, http.StatusConflict, httpx.MessageConflict, []string{err.Error()}, h.log)
	default:
		httpx.WriteInternal(w, err, h.log)
	}
}
