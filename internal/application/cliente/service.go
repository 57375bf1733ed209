package cliente

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"crediadmin/internal/core/cliente"
)

// ErrInvalidInput wraps every request validation failure.
var ErrInvalidInput = errors.New("solicitud no válida")

// MaxPageLength caps the page size of a listing.
const MaxPageLength = 100

// Service exposes client read and delete use cases. Creation goes through
// the intake workflow.
type Service struct {
	repo cliente.Repository
	now  func() time.Time
}

func NewService(repo cliente.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Item is a client row enriched for listings.
type Item struct {
	cliente.Cliente
	NombreCompleto string `json:"nombre_completo"`
	Edad           int    `json:"edad"`
}

// ListResponse is a page of clients.
type ListResponse struct {
	Total int    `json:"total"`
	Start int    `json:"start"`
	Data  []Item `json:"data"`
}

// DetalleResponse is a client with all sub-records and derived fields.
type DetalleResponse struct {
	cliente.Detalle
	NombreCompleto string `json:"nombre_completo"`
	Edad           int    `json:"edad"`
}

// List returns clients newest first. length -1 returns every match.
func (s *Service) List(ctx context.Context, start, length int, buscar string) (*ListResponse, error) {
	if start < 0 {
		return nil, fmt.Errorf("%w: start debe ser un número entero no negativo", ErrInvalidInput)
	}
	if length == 0 || length < -1 || length > MaxPageLength {
		return nil, fmt.Errorf("%w: length debe estar entre 1 y %d (-1 para traer todos)", ErrInvalidInput, MaxPageLength)
	}

	rows, total, err := s.repo.List(ctx, cliente.Filter{
		Buscar: strings.TrimSpace(buscar),
		Start:  start,
		Length: length,
	})
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}

	now := s.now()
	items := make([]Item, 0, len(rows))
	for _, c := range rows {
		items = append(items, Item{
			Cliente:        c,
			NombreCompleto: c.NombreCompleto(),
			Edad:           cliente.Edad(c.FechaNacimiento, now),
		})
	}

	return &ListResponse{Total: total, Start: start, Data: items}, nil
}

// Get returns the client with its references, beneficiaries and collateral.
func (s *Service) Get(ctx context.Context, id string) (*DetalleResponse, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	detalle, err := s.repo.Detail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	if detalle == nil {
		return nil, cliente.ErrNotFound
	}

	return &DetalleResponse{
		Detalle:        *detalle,
		NombreCompleto: detalle.Cliente.NombreCompleto(),
		Edad:           cliente.Edad(detalle.Cliente.FechaNacimiento, s.now()),
	}, nil
}

// Delete removes the client and everything it owns.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, cliente.ErrNotFound) || errors.Is(err, cliente.ErrHasCreditos) {
			return err
		}
		return fmt.Errorf("delete cliente: %w", err)
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: id de cliente inválido", ErrInvalidInput)
	}
	return nil
}
