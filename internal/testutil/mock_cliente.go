package testutil

import (
	"context"
	"sync"

	"crediadmin/internal/core/cliente"
)

// MockClienteRepository is a mock implementation of cliente.Repository.
// Insert calls are recorded so tests can assert on them; it is safe for
// concurrent use.
type MockClienteRepository struct {
	CreateFunc              func(ctx context.Context, c cliente.Cliente) (string, error)
	CreateReferenciasFunc   func(ctx context.Context, clienteID string, refs []cliente.Referencia) error
	CreateBeneficiariosFunc func(ctx context.Context, clienteID string, bens []cliente.Beneficiario) error
	CreateGarantiasFunc     func(ctx context.Context, clienteID string, items []cliente.Garantia) error
	FindByIDFunc            func(ctx context.Context, id string) (*cliente.Cliente, error)
	DetailFunc              func(ctx context.Context, id string) (*cliente.Detalle, error)
	ListFunc                func(ctx context.Context, filter cliente.Filter) ([]cliente.Cliente, int, error)
	DeleteFunc              func(ctx context.Context, id string) error
	CountFunc               func(ctx context.Context) (int, error)

	mu                  sync.Mutex
	Created             []cliente.Cliente
	ReferenciaBatches   [][]cliente.Referencia
	BeneficiarioBatches [][]cliente.Beneficiario
	GarantiaBatches     [][]cliente.Garantia
}

// Create records the call and delegates to CreateFunc, defaulting to id "cliente-1".
func (m *MockClienteRepository) Create(ctx context.Context, c cliente.Cliente) (string, error) {
	m.mu.Lock()
	m.Created = append(m.Created, c)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return "cliente-1", nil
}

func (m *MockClienteRepository) CreateReferencias(ctx context.Context, clienteID string, refs []cliente.Referencia) error {
	m.mu.Lock()
	m.ReferenciaBatches = append(m.ReferenciaBatches, refs)
	m.mu.Unlock()
	if m.CreateReferenciasFunc != nil {
		return m.CreateReferenciasFunc(ctx, clienteID, refs)
	}
	return nil
}

func (m *MockClienteRepository) CreateBeneficiarios(ctx context.Context, clienteID string, bens []cliente.Beneficiario) error {
	m.mu.Lock()
	m.BeneficiarioBatches = append(m.BeneficiarioBatches, bens)
	m.mu.Unlock()
	if m.CreateBeneficiariosFunc != nil {
		return m.CreateBeneficiariosFunc(ctx, clienteID, bens)
	}
	return nil
}

func (m *MockClienteRepository) CreateGarantias(ctx context.Context, clienteID string, items []cliente.Garantia) error {
	m.mu.Lock()
	m.GarantiaBatches = append(m.GarantiaBatches, items)
	m.mu.Unlock()
	if m.CreateGarantiasFunc != nil {
		return m.CreateGarantiasFunc(ctx, clienteID, items)
	}
	return nil
}

// FindByID calls the mock function if set, otherwise returns nil (not found).
func (m *MockClienteRepository) FindByID(ctx context.Context, id string) (*cliente.Cliente, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockClienteRepository) Detail(ctx context.Context, id string) (*cliente.Detalle, error) {
	if m.DetailFunc != nil {
		return m.DetailFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockClienteRepository) List(ctx context.Context, filter cliente.Filter) ([]cliente.Cliente, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []cliente.Cliente{}, 0, nil
}

func (m *MockClienteRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockClienteRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// Calls returns how many inserts each collection received.
func (m *MockClienteRepository) Calls() (clientes, referencias, beneficiarios, garantias int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Created), len(m.ReferenciaBatches), len(m.BeneficiarioBatches), len(m.GarantiaBatches)
}

// Ensure MockClienteRepository implements cliente.Repository interface.
var _ cliente.Repository = (*MockClienteRepository)(nil)
