package cliente

import "context"

// Filter narrows a client listing.
type Filter struct {
	// Buscar matches full name, DPI, phone or email (case-insensitive contains).
	Buscar string
	Start  int
	// Length of -1 returns every matching row.
	Length int
}

// Repository defines the persistence operations for clients and their sub-records.
type Repository interface {
	// Create inserts a client and returns the generated id.
	// A duplicate DPI or email yields *UniqueViolationError.
	Create(ctx context.Context, c Cliente) (string, error)

	// CreateReferencias inserts a batch of references tagged with clienteID.
	CreateReferencias(ctx context.Context, clienteID string, refs []Referencia) error

	// CreateBeneficiarios inserts a batch of beneficiaries tagged with clienteID.
	CreateBeneficiarios(ctx context.Context, clienteID string, bens []Beneficiario) error

	// CreateGarantias inserts a batch of collateral items tagged with clienteID.
	CreateGarantias(ctx context.Context, clienteID string, items []Garantia) error

	// FindByID returns nil when the client does not exist.
	FindByID(ctx context.Context, id string) (*Cliente, error)

	// Detail loads a client with all of its sub-records. Returns nil when not found.
	Detail(ctx context.Context, id string) (*Detalle, error)

	// List returns a page of clients ordered by creation date (newest first) and the total match count.
	List(ctx context.Context, filter Filter) ([]Cliente, int, error)

	// Delete removes a client and, by cascade, its sub-records. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	Count(ctx context.Context) (int, error)
}
