package cliente

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpshell "crediadmin/internal/adapters/http/shell"
	appcliente "crediadmin/internal/application/cliente"
	"crediadmin/internal/application/intake"
	"crediadmin/internal/core/cliente"
	httpx "crediadmin/internal/infrastructure/http"
)

// DefaultPageLength is used when the listing omits length.
const DefaultPageLength = 10

// Handler bridges HTTP traffic with the intake workflow and the client service.
type Handler struct {
	intake   *intake.Service
	clientes *appcliente.Service
	log      *slog.Logger
}

func NewHandler(intakeService *intake.Service, clientes *appcliente.Service, log *slog.Logger) *Handler {
	return &Handler{intake: intakeService, clientes: clientes, log: log}
}

// Routes mounts the client endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/validar", h.Validate)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
}

// submitResponse is the body of every intake submission outcome.
type submitResponse struct {
	ID             string                   `json:"id,omitempty"`
	Estado         string                   `json:"estado"`
	Seccion        intake.Section           `json:"seccion"`
	Errores        cliente.FieldErrors      `json:"errores,omitempty"`
	Notificaciones []httpshell.Notificacion `json:"notificaciones"`
	Cerrar         bool                     `json:"cerrar"`
	Refrescar      bool                     `json:"refrescar"`
	Advertencias   []string                 `json:"advertencias,omitempty"`
}

// Create handles POST /api/v1/clientes: one full intake form submission.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req intake.Request
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
		return
	}

	collector := httpshell.NewCollector()
	result, err := h.intake.Submit(r.Context(), req, collector)

	body := submitResponse{
		ID:             result.ClienteID,
		Estado:         result.Phase.String(),
		Seccion:        result.Section,
		Errores:        result.Errors,
		Notificaciones: collector.Notificaciones(),
		Cerrar:         collector.Cerrar(),
		Refrescar:      collector.Refrescar(),
		Advertencias:   result.Warnings,
	}

	var (
		fieldErrs cliente.FieldErrors
		dup       *cliente.UniqueViolationError
	)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, body, h.log)
	case errors.Is(err, intake.ErrUnknownSection):
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
	case errors.As(err, &fieldErrs):
		httpx.WriteJSON(w, http.StatusUnprocessableEntity, body, h.log)
	case errors.As(err, &dup):
		httpx.WriteJSON(w, http.StatusConflict, body, h.log)
	default:
		h.log.Error("intake submission failed", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, body, h.log)
	}
}

// Validate handles POST /api/v1/clientes/validar. Nothing is stored.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req intake.Request
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
		return
	}

	errs := h.intake.Validate(req)
	if errs == nil {
		errs = cliente.FieldErrors{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"valido":  len(errs) == 0,
		"errores": errs,
	}, h.log)
}

// List handles GET /api/v1/clientes?buscar=&start=&length=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	start, err := httpx.QueryInt(r, "start", 0)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
		return
	}
	length, err := httpx.QueryInt(r, "length", DefaultPageLength)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
		return
	}

	page, err := h.clientes.List(r.Context(), start, length, r.URL.Query().Get("buscar"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page, h.log)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	detalle, err := h.clientes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, detalle, h.log)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.clientes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleError maps domain errors to HTTP status codes.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appcliente.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
	case errors.Is(err, cliente.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.MessageNotFound, []string{err.Error()}, h.log)
	case errors.Is(err, cliente.ErrHasCreditos):
		httpx.WriteError(w, http.StatusConflict, httpx.MessageConflict, []string{err.Error()}, h.log)
	default:
		httpx.WriteInternal(w, err, h.log)
	}
}
