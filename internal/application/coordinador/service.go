package coordinador

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"crediadmin/internal/core/coordinador"
)

// ErrInvalidInput wraps every request validation failure.
var ErrInvalidInput = errors.New("solicitud no válida")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const dateLayout = "2006-01-02"

// Service orchestrates coordinator use cases.
type Service struct {
	repo coordinador.Repository
}

func NewService(repo coordinador.Repository) *Service {
	return &Service{repo: repo}
}

// Request is the payload to create or update a coordinator.
type Request struct {
	Nombres           string `json:"nombres"`
	Apellidos         string `json:"apellidos"`
	Celular           string `json:"celular"`
	FechaContratacion string `json:"fecha_contratacion"`
	Email             string `json:"email"`
	Departamento      string `json:"departamento"`
	Municipio         string `json:"municipio"`
	Pais              string `json:"pais"`
	Direccion         string `json:"direccion"`
}

// ValidationError lists every problem found in a Request.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func (r Request) toDomain() (coordinador.Coordinador, error) {
	var problems []string
	required := []struct {
		value, message string
	}{
		{r.Nombres, "nombres es requerido"},
		{r.Apellidos, "apellidos es requerido"},
		{r.Celular, "celular es requerido"},
		{r.Email, "email es requerido"},
		{r.FechaContratacion, "fecha_contratacion es requerida"},
		{r.Departamento, "departamento es requerido"},
		{r.Municipio, "municipio es requerido"},
		{r.Direccion, "direccion es requerida"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.message)
		}
	}

	email := strings.TrimSpace(r.Email)
	if email != "" && !emailPattern.MatchString(email) {
		problems = append(problems, "email inválido")
	}

	var contratacion time.Time
	if strings.TrimSpace(r.FechaContratacion) != "" {
		var err error
		contratacion, err = time.Parse(dateLayout, strings.TrimSpace(r.FechaContratacion))
		if err != nil {
			problems = append(problems, "fecha_contratacion debe tener el formato AAAA-MM-DD")
		}
	}

	if len(problems) > 0 {
		return coordinador.Coordinador{}, &ValidationError{Errors: problems}
	}

	pais := strings.TrimSpace(r.Pais)
	if pais == "" {
		pais = "Guatemala"
	}

	return coordinador.Coordinador{
		Nombres:           strings.TrimSpace(r.Nombres),
		Apellidos:         strings.TrimSpace(r.Apellidos),
		Celular:           strings.TrimSpace(r.Celular),
		FechaContratacion: contratacion,
		Email:             strings.ToLower(email),
		Departamento:      strings.TrimSpace(r.Departamento),
		Municipio:         strings.TrimSpace(r.Municipio),
		Pais:              pais,
		Direccion:         strings.TrimSpace(r.Direccion),
	}, nil
}

// Create validates and stores a coordinator, returning its id.
func (s *Service) Create(ctx context.Context, req Request) (string, error) {
	c, err := req.toDomain()
	if err != nil {
		return "", err
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		if errors.Is(err, coordinador.ErrDuplicateEmail) {
			return "", err
		}
		return "", fmt.Errorf("create coordinador: %w", err)
	}
	return id, nil
}

func (s *Service) Update(ctx context.Context, id string, req Request) error {
	if err := validateID(id); err != nil {
		return err
	}
	c, err := req.toDomain()
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, c); err != nil {
		if errors.Is(err, coordinador.ErrNotFound) || errors.Is(err, coordinador.ErrDuplicateEmail) {
			return err
		}
		return fmt.Errorf("update coordinador: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*coordinador.Coordinador, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get coordinador: %w", err)
	}
	if c == nil {
		return nil, coordinador.ErrNotFound
	}
	return c, nil
}

// List returns every coordinator, newest first.
func (s *Service) List(ctx context.Context) ([]coordinador.Coordinador, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list coordinadores: %w", err)
	}
	return list, nil
}

// Delete removes a coordinator. It fails with ErrHasCreditos while credits reference it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, coordinador.ErrNotFound) || errors.Is(err, coordinador.ErrHasCreditos) {
			return err
		}
		return fmt.Errorf("delete coordinador: %w", err)
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: id de coordinador inválido", ErrInvalidInput)
	}
	return nil
}
