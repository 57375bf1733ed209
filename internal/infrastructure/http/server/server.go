package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crediadmin/internal/infrastructure/config"
	httpx "crediadmin/internal/infrastructure/http"
	"crediadmin/internal/infrastructure/http/middleware"
)

// RouteGroup mounts a set of endpoints on a sub-router.
type RouteGroup interface {
	Routes(r chi.Router)
}

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	cfg        config.AppConfig
	log        *slog.Logger
	httpServer *http.Server
	auth       *middleware.JWTAuthenticator
}

// Options groups the dependencies required to build the server. Handlers
// left nil answer 503.
type Options struct {
	Config        config.AppConfig
	Logger        *slog.Logger
	HealthHandler http.Handler
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Observers receive the latency of every request.
	Observers   []middleware.HTTPObserver
	AuthOptions []middleware.Option

	Clientes      RouteGroup
	Expediente    RouteGroup
	Coordinadores RouteGroup
	Creditos      RouteGroup
	Dashboard     http.Handler
	Catalogos     http.Handler
	Me            http.Handler
}

// New creates a configured HTTP server instance.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.HealthHandler == nil {
		return nil, errors.New("health handler is required")
	}

	auth, err := middleware.NewJWTAuthenticator(opts.Config.Auth, opts.Logger, opts.AuthOptions...)
	if err != nil {
		return nil, fmt.Errorf("configure jwt authenticator: %w", err)
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger, opts.Observers...))
	router.Use(chimw.Recoverer)
	if len(opts.Config.HTTP.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.Config.HTTP.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	router.Use(auth.Middleware)

	router.Method(http.MethodGet, "/health", opts.HealthHandler)
	if opts.Gatherer != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Deadline(opts.Config.HTTP.RequestTimeout))

		api.Method(http.MethodGet, "/me", handlerOrUnavailable(opts.Me))
		api.Method(http.MethodGet, "/catalogos", handlerOrUnavailable(opts.Catalogos))
		api.Method(http.MethodGet, "/dashboard", handlerOrUnavailable(opts.Dashboard))

		api.Route("/clientes", func(r chi.Router) {
			mount(r, opts.Clientes)
			r.Route("/{id}/expediente", func(r chi.Router) {
				mount(r, opts.Expediente)
			})
		})
		api.Route("/coordinadores", func(r chi.Router) {
			mount(r, opts.Coordinadores)
		})
		api.Route("/creditos", func(r chi.Router) {
			mount(r, opts.Creditos)
		})
	})

	srv := &http.Server{
		Addr:              opts.Config.HTTP.Address(),
		Handler:           router,
		ReadTimeout:       opts.Config.HTTP.ReadTimeout,
		ReadHeaderTimeout: opts.Config.HTTP.ReadTimeout,
		WriteTimeout:      opts.Config.HTTP.WriteTimeout,
		IdleTimeout:       opts.Config.HTTP.IdleTimeout,
	}

	return &Server{
		cfg:        opts.Config,
		log:        opts.Logger,
		httpServer: srv,
		auth:       auth,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is cancelled or the
// server fails.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("HTTP server started", "addr", l.Addr().String())
		if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		timeout := s.cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.log.Info("shutting down HTTP server")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// Close releases the background JWKS refresher.
func (s *Server) Close() {
	if s.auth != nil {
		s.auth.Close()
	}
}

func mount(r chi.Router, group RouteGroup) {
	if group == nil {
		r.Handle("/*", unavailable())
		r.Handle("/", unavailable())
		return
	}
	group.Routes(r)
}

func handlerOrUnavailable(h http.Handler) http.Handler {
	if h == nil {
		return unavailable()
	}
	return h
}

func unavailable() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusServiceUnavailable, "Servicio no disponible", []string{"El servicio no está configurado"}, nil)
	})
}
