package health

import (
	"context"
	"time"

	corehealth "crediadmin/internal/core/health"
)

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
}

// Checker probes a dependency; a nil error means it is reachable.
type Checker func(ctx context.Context) error

// Service exposes health-check use cases to adapters.
type Service struct {
	meta      Metadata
	startedAt time.Time
	timeout   time.Duration
	names     []string
	checks    map[string]Checker
}

func NewService(meta Metadata) *Service {
	return &Service{
		meta:      meta,
		startedAt: time.Now().UTC(),
		timeout:   2 * time.Second,
		checks:    make(map[string]Checker),
	}
}

// AddCheck registers a dependency probe. Probes run in registration order.
func (s *Service) AddCheck(name string, check Checker) {
	if _, exists := s.checks[name]; !exists {
		s.names = append(s.names, name)
	}
	s.checks[name] = check
}

// Status returns the current availability snapshot. A failing probe marks
// the service DEGRADED.
func (s *Service) Status(ctx context.Context) corehealth.Status {
	uptime := time.Since(s.startedAt)
	status := corehealth.Status{
		Service:     s.meta.Service,
		Version:     s.meta.Version,
		Environment: s.meta.Environment,
		Status:      corehealth.StatusUp,
		StartedAt:   s.startedAt,
		Uptime:      uptime.String(),
		UptimeSecs:  int64(uptime.Seconds()),
	}

	for _, name := range s.names {
		dep := corehealth.Dependency{Name: name, Status: corehealth.StatusUp}
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		if err := s.checks[name](checkCtx); err != nil {
			dep.Status = "DOWN"
			dep.Error = err.Error()
			status.Status = corehealth.StatusDegraded
		}
		cancel()
		status.Dependencies = append(status.Dependencies, dep)
	}

	return status
}
