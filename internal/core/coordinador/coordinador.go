package coordinador

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a coordinator id does not match any row.
	ErrNotFound = errors.New("el coordinador no existe")
	// ErrDuplicateEmail is returned when another coordinator already uses the email.
	ErrDuplicateEmail = errors.New("ya existe un coordinador con ese email")
	// ErrHasCreditos is returned when deleting a coordinator still assigned to credits.
	ErrHasCreditos = errors.New("el coordinador tiene créditos asignados")
)

// Coordinador is a field officer who manages credits.
type Coordinador struct {
	ID                string    `json:"id"`
	Nombres           string    `json:"nombres"`
	Apellidos         string    `json:"apellidos"`
	Celular           string    `json:"celular"`
	FechaContratacion time.Time `json:"fecha_contratacion"`
	Email             string    `json:"email"`
	Departamento      string    `json:"departamento"`
	Municipio         string    `json:"municipio"`
	Pais              string    `json:"pais"`
	Direccion         string    `json:"direccion"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NombreCompleto returns "Nombres Apellidos".
func (c Coordinador) NombreCompleto() string {
	return c.Nombres + " " + c.Apellidos
}

// Repository defines persistence operations for coordinators.
type Repository interface {
	Create(ctx context.Context, c Coordinador) (string, error)
	// Update replaces every editable column. Returns ErrNotFound when absent.
	Update(ctx context.Context, id string, c Coordinador) error
	// FindByID returns nil when the coordinator does not exist.
	FindByID(ctx context.Context, id string) (*Coordinador, error)
	// List returns all coordinators, newest first.
	List(ctx context.Context) ([]Coordinador, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
