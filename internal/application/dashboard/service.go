package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"crediadmin/internal/core/credito"
)

// RecentLimit is how many of the latest credits the summary carries.
const RecentLimit = 5

// Counter counts rows of an entity.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// CreditoReader is the part of credito.Repository the dashboard needs.
type CreditoReader interface {
	Stats(ctx context.Context) (credito.Stats, error)
	List(ctx context.Context, limit int) ([]credito.Resumen, error)
}

// Summary is the landing page aggregate.
type Summary struct {
	TotalClientes      int               `json:"total_clientes"`
	TotalCoordinadores int               `json:"total_coordinadores"`
	TotalCreditos      int               `json:"total_creditos"`
	CreditosAprobados  int               `json:"creditos_aprobados"`
	MontoTotal         float64           `json:"monto_total"`
	CreditosRecientes  []credito.Resumen `json:"creditos_recientes"`
}

type Service struct {
	clientes      Counter
	coordinadores Counter
	creditos      CreditoReader
}

func NewService(clientes, coordinadores Counter, creditos CreditoReader) *Service {
	return &Service{clientes: clientes, coordinadores: coordinadores, creditos: creditos}
}

// Summary runs the four queries concurrently; the first failure cancels the rest.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var (
		out    Summary
		stats  credito.Stats
		recent []credito.Resumen
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.clientes.Count(gctx)
		if err != nil {
			return fmt.Errorf("count clientes: %w", err)
		}
		out.TotalClientes = n
		return nil
	})
	g.Go(func() error {
		n, err := s.coordinadores.Count(gctx)
		if err != nil {
			return fmt.Errorf("count coordinadores: %w", err)
		}
		out.TotalCoordinadores = n
		return nil
	})
	g.Go(func() error {
		var err error
		if stats, err = s.creditos.Stats(gctx); err != nil {
			return fmt.Errorf("credito stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recent, err = s.creditos.List(gctx, RecentLimit); err != nil {
			return fmt.Errorf("recent creditos: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	out.TotalCreditos = stats.Total
	out.CreditosAprobados = stats.Aprobados
	out.MontoTotal = stats.MontoTotal
	if recent == nil {
		recent = []credito.Resumen{}
	}
	out.CreditosRecientes = recent
	return out, nil
}
