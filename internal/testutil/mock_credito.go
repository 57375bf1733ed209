package testutil

import (
	"context"

	"crediadmin/internal/core/credito"
)

// MockCreditoRepository is a mock implementation of credito.Repository.
type MockCreditoRepository struct {
	CreateFunc   func(ctx context.Context, c credito.Credito) (string, error)
	UpdateFunc   func(ctx context.Context, id string, p credito.Patch) error
	FindByIDFunc func(ctx context.Context, id string) (*credito.Resumen, error)
	ListFunc     func(ctx context.Context, limit int) ([]credito.Resumen, error)
	DeleteFunc   func(ctx context.Context, id string) error
	StatsFunc    func(ctx context.Context) (credito.Stats, error)
}

func (m *MockCreditoRepository) Create(ctx context.Context, c credito.Credito) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return "credito-1", nil
}

func (m *MockCreditoRepository) Update(ctx context.Context, id string, p credito.Patch) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, p)
	}
	return nil
}

func (m *MockCreditoRepository) FindByID(ctx context.Context, id string) (*credito.Resumen, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCreditoRepository) List(ctx context.Context, limit int) ([]credito.Resumen, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []credito.Resumen{}, nil
}

func (m *MockCreditoRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockCreditoRepository) Stats(ctx context.Context) (credito.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return credito.Stats{}, nil
}

var _ credito.Repository = (*MockCreditoRepository)(nil)
