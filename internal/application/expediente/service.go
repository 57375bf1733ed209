package expediente

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"crediadmin/internal/core/cliente"
	"crediadmin/internal/core/expediente"
	ctxutil "crediadmin/internal/infrastructure/context"
)

// ErrInvalidInput wraps every request validation failure.
var ErrInvalidInput = errors.New("solicitud no válida")

// DownloadTTL is how long a signed download link stays valid.
const DownloadTTL = 15 * time.Minute

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// ClienteFinder looks up the owner of a client file.
type ClienteFinder interface {
	FindByID(ctx context.Context, id string) (*cliente.Cliente, error)
}

// Recorder receives upload and removal counters.
type Recorder interface {
	UploadOutcome(outcome string)
	StorageRemoveFailed()
}

// Service manages the documents attached to a client.
type Service struct {
	repo     expediente.Repository
	storage  expediente.Storage
	clientes ClienteFinder
	log      *slog.Logger
	recorder Recorder
	now      func() time.Time
}

func NewService(repo expediente.Repository, storage expediente.Storage, clientes ClienteFinder, log *slog.Logger, recorder Recorder) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{
		repo:     repo,
		storage:  storage,
		clientes: clientes,
		log:      log,
		recorder: recorder,
		now:      time.Now,
	}
}

// Upload is a file received for a client.
type Upload struct {
	ClienteID   string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Upload stores the bytes under <cliente>/<unix-millis>.<ext> and records the
// metadata. When the metadata insert fails the blob is removed again.
func (s *Service) Upload(ctx context.Context, up Upload) (*expediente.Archivo, error) {
	if err := validateID(up.ClienteID, "cliente"); err != nil {
		return nil, err
	}
	if up.Size > expediente.MaxFileSize {
		s.recorder.UploadOutcome("rejected")
		return nil, expediente.ErrFileTooLarge
	}
	if up.Size <= 0 {
		s.recorder.UploadOutcome("rejected")
		return nil, expediente.ErrEmptyFile
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(up.FileName)), ".")
	contentType, ok := contentTypes[ext]
	if !ok {
		s.recorder.UploadOutcome("rejected")
		return nil, expediente.ErrUnsupportedType
	}
	if !declaredTypeMatches(up.ContentType, contentType) {
		s.recorder.UploadOutcome("rejected")
		return nil, expediente.ErrUnsupportedType
	}

	owner, err := s.clientes.FindByID(ctx, up.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("find cliente: %w", err)
	}
	if owner == nil {
		return nil, cliente.ErrNotFound
	}

	key := fmt.Sprintf("%s/%d.%s", up.ClienteID, s.now().UnixMilli(), ext)
	if err := s.storage.Upload(ctx, key, contentType, up.Body, up.Size); err != nil {
		s.recorder.UploadOutcome("failed")
		return nil, fmt.Errorf("upload archivo: %w", err)
	}

	archivo := expediente.Archivo{
		ClienteID:     up.ClienteID,
		NombreArchivo: filepath.Base(up.FileName),
		TipoArchivo:   contentType,
		URL:           s.storage.PublicURL(key),
		StorageKey:    key,
		Size:          up.Size,
	}
	id, err := s.repo.Create(ctx, archivo)
	if err != nil {
		s.recorder.UploadOutcome("failed")
		if rmErr := s.storage.Remove(ctx, key); rmErr != nil {
			s.recorder.StorageRemoveFailed()
			s.log.Warn("failed to remove orphaned blob", "key", key, "error", rmErr,
				"correlation_id", ctxutil.GetCorrelationID(ctx))
		}
		return nil, fmt.Errorf("save archivo: %w", err)
	}
	archivo.ID = id
	archivo.CreatedAt = s.now()

	s.recorder.UploadOutcome("ok")
	s.log.Info("document uploaded", "cliente_id", up.ClienteID, "key", key, "size", up.Size,
		"correlation_id", ctxutil.GetCorrelationID(ctx))
	return &archivo, nil
}

// List returns the client's documents, newest first.
func (s *Service) List(ctx context.Context, clienteID string) ([]expediente.Archivo, error) {
	if err := validateID(clienteID, "cliente"); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByCliente(ctx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("list archivos: %w", err)
	}
	return list, nil
}

// DownloadURL returns a signed link to one of the client's documents.
func (s *Service) DownloadURL(ctx context.Context, clienteID, archivoID string) (string, error) {
	archivo, err := s.find(ctx, clienteID, archivoID)
	if err != nil {
		return "", err
	}
	link, err := s.storage.DownloadURL(ctx, archivo.StorageKey, DownloadTTL)
	if err != nil {
		return "", fmt.Errorf("sign download: %w", err)
	}
	return link, nil
}

// Delete removes the metadata row, then the blob. A blob removal failure is
// logged and does not fail the delete.
func (s *Service) Delete(ctx context.Context, clienteID, archivoID string) error {
	archivo, err := s.find(ctx, clienteID, archivoID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, archivoID); err != nil {
		if errors.Is(err, expediente.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete archivo: %w", err)
	}

	if err := s.storage.Remove(ctx, archivo.StorageKey); err != nil {
		s.recorder.StorageRemoveFailed()
		s.log.Warn("failed to remove blob, metadata already deleted",
			"key", archivo.StorageKey, "error", err, "correlation_id", ctxutil.GetCorrelationID(ctx))
	}
	return nil
}

// find loads a document and checks it belongs to the client.
func (s *Service) find(ctx context.Context, clienteID, archivoID string) (*expediente.Archivo, error) {
	if err := validateID(clienteID, "cliente"); err != nil {
		return nil, err
	}
	if err := validateID(archivoID, "archivo"); err != nil {
		return nil, err
	}

	archivo, err := s.repo.FindByID(ctx, archivoID)
	if err != nil {
		return nil, fmt.Errorf("find archivo: %w", err)
	}
	if archivo == nil || archivo.ClienteID != clienteID {
		return nil, expediente.ErrNotFound
	}
	return archivo, nil
}

func validateID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: id de %s inválido", ErrInvalidInput, what)
	}
	return nil
}

type noopRecorder struct{}

func (noopRecorder) UploadOutcome(string) {}
func (noopRecorder) StorageRemoveFailed() {}

// declaredTypeMatches accepts a client-declared media type only when it
// agrees with the one derived from the extension. Generic or missing types
// are ignored.
func declaredTypeMatches(declared, fromExt string) bool {
	if strings.TrimSpace(declared) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	if mediaType == "image/jpg" {
		mediaType = "image/jpeg"
	}
	return mediaType == "application/octet-stream" || mediaType == fromExt
}
