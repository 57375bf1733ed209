package credito

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"crediadmin/internal/core/credito"
)

// ErrInvalidInput wraps every request validation failure.
var ErrInvalidInput = errors.New("solicitud no válida")

const dateLayout = "2006-01-02"

// Service orchestrates credit use cases.
type Service struct {
	repo credito.Repository
	now  func() time.Time
}

func NewService(repo credito.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateRequest is the payload to register a credit.
type CreateRequest struct {
	ClienteID     string  `json:"cliente_id"`
	CoordinadorID string  `json:"coordinador_id"`
	Monto         float64 `json:"monto"`
	Estado        string  `json:"estado"`
	Fecha         string  `json:"fecha"`
	Notas         string  `json:"notas"`
}

// UpdateRequest edits status, amount and notes. Absent estado or monto are
// kept; notas is always replaced and blank clears it.
type UpdateRequest struct {
	Estado *string  `json:"estado"`
	Monto  *float64 `json:"monto"`
	Notas  *string  `json:"notas"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	var problems []string
	if _, err := uuid.Parse(req.ClienteID); err != nil {
		problems = append(problems, "cliente_id es requerido")
	}
	if _, err := uuid.Parse(req.CoordinadorID); err != nil {
		problems = append(problems, "coordinador_id es requerido")
	}
	if req.Monto <= 0 {
		problems = append(problems, "monto debe ser mayor que cero")
	}

	estado := credito.EstadoEnProceso
	if e := strings.TrimSpace(req.Estado); e != "" {
		estado = credito.Estado(e)
		if !estado.Valid() {
			problems = append(problems, fmt.Sprintf("estado %q no permitido", e))
		}
	}

	fecha := s.today()
	if f := strings.TrimSpace(req.Fecha); f != "" {
		parsed, err := time.Parse(dateLayout, f)
		if err != nil {
			problems = append(problems, "fecha debe tener el formato AAAA-MM-DD")
		}
		fecha = parsed
	}

	if len(problems) > 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}

	id, err := s.repo.Create(ctx, credito.Credito{
		ClienteID:     req.ClienteID,
		CoordinadorID: req.CoordinadorID,
		Monto:         req.Monto,
		Estado:        estado,
		Fecha:         fecha,
		Notas:         optional(req.Notas),
	})
	if err != nil {
		if errors.Is(err, credito.ErrInvalidReference) {
			return "", err
		}
		return "", fmt.Errorf("create credito: %w", err)
	}
	return id, nil
}

// Update applies the editable fields and bumps updated_at.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) error {
	if err := validateID(id); err != nil {
		return err
	}

	var patch credito.Patch
	if req.Estado != nil {
		estado := credito.Estado(strings.TrimSpace(*req.Estado))
		if !estado.Valid() {
			return fmt.Errorf("%w: estado %q no permitido", ErrInvalidInput, *req.Estado)
		}
		patch.Estado = &estado
	}
	if req.Monto != nil {
		if *req.Monto <= 0 {
			return fmt.Errorf("%w: monto debe ser mayor que cero", ErrInvalidInput)
		}
		patch.Monto = req.Monto
	}
	if req.Notas != nil {
		patch.Notas = optional(*req.Notas)
		patch.ClearNotas = patch.Notas == nil
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, credito.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update credito: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*credito.Resumen, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get credito: %w", err)
	}
	if c == nil {
		return nil, credito.ErrNotFound
	}
	return c, nil
}

// List returns credits with client and coordinator names, newest first.
func (s *Service) List(ctx context.Context) ([]credito.Resumen, error) {
	list, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list creditos: %w", err)
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, credito.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete credito: %w", err)
	}
	return nil
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: id de crédito inválido", ErrInvalidInput)
	}
	return nil
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
