package expediente

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appexpediente "crediadmin/internal/application/expediente"
	"crediadmin/internal/core/cliente"
	"crediadmin/internal/core/expediente"
	httpx "crediadmin/internal/infrastructure/http"
)

const (
	// FormField is the multipart field carrying the file.
	FormField = "archivo"
	// multipartOverhead leaves room for boundaries and headers around the file.
	multipartOverhead = 1 << 20
	memoryLimit       = 4 << 20
)

// Handler serves the document file of a client. Routes expect a {id}
// parameter naming the client.
type Handler struct {
	service *appexpediente.Service
	log     *slog.Logger
}

func NewHandler(service *appexpediente.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Upload)
	r.Get("/{archivoId}/descarga", h.Download)
	r.Delete("/{archivoId}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	if list == nil {
		list = []expediente.Archivo{}
	}
	httpx.WriteJSON(w, http.StatusOK, list, h.log)
}

// Upload handles a multipart/form-data POST with the file in the "archivo" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, expediente.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.handleError(w, expediente.ErrFileTooLarge)
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{"formulario multipart inválido"}, h.log)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormField)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{"el campo archivo es obligatorio"}, h.log)
		return
	}
	defer file.Close()

	archivo, err := h.service.Upload(r.Context(), appexpediente.Upload{
		ClienteID:   chi.URLParam(r, "id"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, archivo, h.log)
}

// Download redirects to a short-lived signed link.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.DownloadURL(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "archivoId"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "archivoId")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appexpediente.ErrInvalidInput),
		errors.Is(err, expediente.ErrUnsupportedType),
		errors.Is(err, expediente.ErrEmptyFile):
		httpx.WriteError(w, http.StatusBadRequest, httpx.MessageValidation, []string{err.Error()}, h.log)
	case errors.Is(err, expediente.ErrFileTooLarge):
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, httpx.MessageValidation, []string{err.Error()}, h.log)
	case errors.Is(err, cliente.ErrNotFound), errors.Is(err, expediente.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.MessageNotFound, []string{err.Error()}, h.log)
	default:
		httpx.WriteInternal(w, err, h.log)
	}
}
