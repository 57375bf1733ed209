package testutil

import (
	"context"
	"io"
	"sync"
	"time"

	"crediadmin/internal/core/expediente"
)

// MockExpedienteRepository is a mock implementation of expediente.Repository.
type MockExpedienteRepository struct {
	CreateFunc        func(ctx context.Context, a expediente.Archivo) (string, error)
	ListByClienteFunc func(ctx context.Context, clienteID string) ([]expediente.Archivo, error)
	FindByIDFunc      func(ctx context.Context, id string) (*expediente.Archivo, error)
	DeleteFunc        func(ctx context.Context, id string) error

	Created []expediente.Archivo
	Deleted []string
}

func (m *MockExpedienteRepository) Create(ctx context.Context, a expediente.Archivo) (string, error) {
	m.Created = append(m.Created, a)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	return "archivo-1", nil
}

func (m *MockExpedienteRepository) ListByCliente(ctx context.Context, clienteID string) ([]expediente.Archivo, error) {
	if m.ListByClienteFunc != nil {
		return m.ListByClienteFunc(ctx, clienteID)
	}
	return []expediente.Archivo{}, nil
}

func (m *MockExpedienteRepository) FindByID(ctx context.Context, id string) (*expediente.Archivo, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockExpedienteRepository) Delete(ctx context.Context, id string) error {
	m.Deleted = append(m.Deleted, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

var _ expediente.Repository = (*MockExpedienteRepository)(nil)

// MemoryStorage is an in-memory expediente.Storage. Set UploadErr or
// RemoveErr to simulate blob store failures.
type MemoryStorage struct {
	UploadErr error
	RemoveErr error

	mu           sync.Mutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	Removed      []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: make(map[string][]byte), ContentTypes: make(map[string]string)}
}

func (s *MemoryStorage) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	if s.UploadErr != nil {
		return s.UploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = data
	s.ContentTypes[key] = contentType
	return nil
}

func (s *MemoryStorage) PublicURL(key string) string {
	return "https://storage.test/expedientes/" + key
}

func (s *MemoryStorage) DownloadURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return s.PublicURL(key) + "?expires=" + ttl.String(), nil
}

func (s *MemoryStorage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Removed = append(s.Removed, key)
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	delete(s.Objects, key)
	return nil
}

var _ expediente.Storage = (*MemoryStorage)(nil)
