package cliente

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a client id does not match any row.
	ErrNotFound = errors.New("el cliente no existe")
	// ErrHasCreditos is returned when deleting a client that still has credits.
	ErrHasCreditos = errors.New("el cliente tiene créditos registrados")
)

// UniqueViolationError reports that an insert collided with an existing
// client on a unique column ("dpi" or "email").
type UniqueViolationError struct {
	Field string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique violation on clientes.%s", e.Field)
}

// Message returns the user-facing text for the violation.
func (e *UniqueViolationError) Message() string {
	if e.Field == "email" {
		return "Ya existe un cliente con ese email"
	}
	return "Ya existe un cliente con ese DPI"
}
