package expediente

import (
	"context"
	"errors"
	"io"
	"time"
)

// MaxFileSize is the largest accepted upload, in bytes.
const MaxFileSize int64 = 10 << 20

var (
	ErrNotFound        = errors.New("el archivo no existe")
	ErrFileTooLarge    = errors.New("el archivo no puede superar los 10MB")
	ErrUnsupportedType = errors.New("solo se permiten archivos PDF, JPG o PNG")
	ErrEmptyFile       = errors.New("el archivo está vacío")
)

// Archivo is the metadata of a document attached to a client file.
type Archivo struct {
	ID            string    `json:"id"`
	ClienteID     string    `json:"cliente_id"`
	NombreArchivo string    `json:"nombre_archivo"`
	TipoArchivo   string    `json:"tipo_archivo"`
	URL           string    `json:"url"`
	StorageKey    string    `json:"storage_key"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
}

// Repository persists document metadata.
type Repository interface {
	Create(ctx context.Context, a Archivo) (string, error)
	// ListByCliente returns the client's documents, newest first.
	ListByCliente(ctx context.Context, clienteID string) ([]Archivo, error)
	// FindByID returns nil when the document does not exist.
	FindByID(ctx context.Context, id string) (*Archivo, error)
	Delete(ctx context.Context, id string) error
}

// Storage is the blob store holding the document bytes.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PublicURL(key string) string
	// DownloadURL returns a signed link that expires after ttl.
	DownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Remove deletes the object. Callers treat failures as non-fatal.
	Remove(ctx context.Context, key string) error
}
