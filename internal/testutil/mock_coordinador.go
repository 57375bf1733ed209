package testutil

import (
	"context"

	"crediadmin/internal/core/coordinador"
)

// MockCoordinadorRepository is a mock implementation of coordinador.Repository.
type MockCoordinadorRepository struct {
	CreateFunc   func(ctx context.Context, c coordinador.Coordinador) (string, error)
	UpdateFunc   func(ctx context.Context, id string, c coordinador.Coordinador) error
	FindByIDFunc func(ctx context.Context, id string) (*coordinador.Coordinador, error)
	ListFunc     func(ctx context.Context) ([]coordinador.Coordinador, error)
	DeleteFunc   func(ctx context.Context, id string) error
	CountFunc    func(ctx context.Context) (int, error)
}

func (m *MockCoordinadorRepository) Create(ctx context.Context, c coordinador.Coordinador) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return "coordinador-1", nil
}

func (m *MockCoordinadorRepository) Update(ctx context.Context, id string, c coordinador.Coordinador) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, c)
	}
	return nil
}

func (m *MockCoordinadorRepository) FindByID(ctx context.Context, id string) (*coordinador.Coordinador, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCoordinadorRepository) List(ctx context.Context) ([]coordinador.Coordinador, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []coordinador.Coordinador{}, nil
}

func (m *MockCoordinadorRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockCoordinadorRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

var _ coordinador.Repository = (*MockCoordinadorRepository)(nil)
