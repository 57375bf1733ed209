package intake

import (
	"context"
	"log/slog"

	"crediadmin/internal/core/cliente"
	"crediadmin/internal/core/shell"
)

// Request is a complete intake form as posted by a client application.
type Request struct {
	cliente.Draft
	Seccion       string                      `json:"seccion"`
	Referencias   []cliente.ReferenciaDraft   `json:"referencias"`
	Beneficiarios []cliente.BeneficiarioDraft `json:"beneficiarios"`
	Garantias     []cliente.GarantiaDraft     `json:"garantias"`
}

// Service builds one Workflow per submitted form.
type Service struct {
	gateway Gateway
	log     *slog.Logger
	opts    []Option
}

func NewService(gateway Gateway, log *slog.Logger, opts ...Option) *Service {
	return &Service{gateway: gateway, log: log, opts: opts}
}

// Submit loads req into a fresh workflow and submits it, sending
// notifications to sh.
func (s *Service) Submit(ctx context.Context, req Request, sh shell.Shell) (Result, error) {
	wf := New(s.gateway, sh, s.log, s.opts...)
	wf.Load(req.Draft, req.Referencias, req.Beneficiarios, req.Garantias)

	if req.Seccion != "" {
		section, err := ParseSection(req.Seccion)
		if err != nil {
			return Result{}, err
		}
		if err := wf.Navigate(section); err != nil {
			return Result{}, err
		}
	}

	return wf.Submit(ctx)
}

// Validate runs the intake rules without persisting anything.
func (s *Service) Validate(req Request) cliente.FieldErrors {
	wf := New(s.gateway, nil, s.log, s.opts...)
	return cliente.Validate(req.Draft, req.Referencias, wf.now())
}
