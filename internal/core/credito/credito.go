package credito

import (
	"context"
	"errors"
	"time"
)

// Estado is the lifecycle status of a credit.
type Estado string

const (
	EstadoEnProceso  Estado = "En proceso"
	EstadoAprobado   Estado = "Aprobado"
	EstadoRechazado  Estado = "Rechazado"
	EstadoCompletado Estado = "Completado"
)

// Estados lists every status in display order.
var Estados = []Estado{EstadoEnProceso, EstadoAprobado, EstadoRechazado, EstadoCompletado}

func (e Estado) Valid() bool {
	for _, v := range Estados {
		if v == e {
			return true
		}
	}
	return false
}

var (
	ErrNotFound = errors.New("el crédito no existe")
	// ErrInvalidReference is returned when the client or coordinator does not exist.
	ErrInvalidReference = errors.New("el cliente o coordinador indicado no existe")
)

// Credito is a credit granted to a client and managed by a coordinator.
type Credito struct {
	ID            string    `json:"id"`
	ClienteID     string    `json:"cliente_id"`
	CoordinadorID string    `json:"coordinador_id"`
	Monto         float64   `json:"monto"`
	Estado        Estado    `json:"estado"`
	Fecha         time.Time `json:"fecha"`
	Notas         *string   `json:"notas"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Resumen is a credit joined with the names needed by listings.
type Resumen struct {
	Credito
	ClienteNombre     string `json:"cliente_nombre"`
	ClienteDPI        string `json:"cliente_dpi"`
	ClienteCelular    string `json:"cliente_celular"`
	CoordinadorNombre string `json:"coordinador_nombre"`
}

// Patch carries the fields editable after creation. Nil fields are left
// unchanged; ClearNotas removes the notes.
type Patch struct {
	Estado     *Estado
	Monto      *float64
	Notas      *string
	ClearNotas bool
}

// Stats aggregates the credit portfolio.
type Stats struct {
	Total      int     `json:"total"`
	Aprobados  int     `json:"aprobados"`
	MontoTotal float64 `json:"monto_total"`
}

// Repository defines persistence operations for credits.
type Repository interface {
	Create(ctx context.Context, c Credito) (string, error)
	// Update applies p and refreshes updated_at. Returns ErrNotFound when absent.
	Update(ctx context.Context, id string, p Patch) error
	// FindByID returns nil when the credit does not exist.
	FindByID(ctx context.Context, id string) (*Resumen, error)
	// List returns credits newest first; limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Resumen, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}
