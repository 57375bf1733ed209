package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	clientepg "crediadmin/internal/adapters/cliente/postgres"
	coordinadorpg "crediadmin/internal/adapters/coordinador/postgres"
	creditopg "crediadmin/internal/adapters/credito/postgres"
	expedientepg "crediadmin/internal/adapters/expediente/postgres"
	catalogohttp "crediadmin/internal/adapters/http/catalogo"
	clientehttp "crediadmin/internal/adapters/http/cliente"
	coordinadorhttp "crediadmin/internal/adapters/http/coordinador"
	creditohttp "crediadmin/internal/adapters/http/credito"
	dashboardhttp "crediadmin/internal/adapters/http/dashboard"
	expedientehttp "crediadmin/internal/adapters/http/expediente"
	healthhttp "crediadmin/internal/adapters/http/health"
	sessionhttp "crediadmin/internal/adapters/http/session"
	s3storage "crediadmin/internal/adapters/storage/s3"
	appcliente "crediadmin/internal/application/cliente"
	appcoordinador "crediadmin/internal/application/coordinador"
	appcredito "crediadmin/internal/application/credito"
	appdashboard "crediadmin/internal/application/dashboard"
	appexpediente "crediadmin/internal/application/expediente"
	apphealth "crediadmin/internal/application/health"
	"crediadmin/internal/application/intake"
	"crediadmin/internal/infrastructure/config"
	"crediadmin/internal/infrastructure/database"
	"crediadmin/internal/infrastructure/http/middleware"
	"crediadmin/internal/infrastructure/http/server"
	"crediadmin/internal/infrastructure/logger"
	"crediadmin/internal/infrastructure/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "service stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		App:         cfg.App.Name,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Environment: cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, database.Config{
		URL:             cfg.Database.URL,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Database,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info("database connection established", "database", cfg.Database.Database, "url_configured", cfg.Database.URL != "")

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(ctx, pool, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	storage, err := s3storage.New(ctx, s3storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
		UsePathStyle:    cfg.Storage.UsePathStyle,
	})
	if err != nil {
		return fmt.Errorf("configure storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	clienteRepo := clientepg.NewRepository(pool)
	coordinadorRepo := coordinadorpg.NewRepository(pool)
	creditoRepo := creditopg.NewRepository(pool)
	expedienteRepo := expedientepg.NewRepository(pool)

	intakeService := intake.NewService(clienteRepo, log,
		intake.WithRecorder(m),
		intake.WithChildTimeout(cfg.Intake.ChildTimeout),
	)
	expedienteService := appexpediente.NewService(expedienteRepo, storage, clienteRepo, log, m)

	healthService := apphealth.NewService(apphealth.Metadata{
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	})
	healthService.AddCheck("postgres", pool.Ping)
	healthService.AddCheck("storage", storage.Ping)

	dashboard := dashboardhttp.NewHandler(appdashboard.NewService(clienteRepo, coordinadorRepo, creditoRepo), log)

	srv, err := server.New(server.Options{
		Config:        cfg,
		Logger:        log,
		HealthHandler: http.HandlerFunc(healthhttp.NewHandler(healthService).Status),
		Gatherer:      registry,
		Observers:     []middleware.HTTPObserver{m},
		Clientes:      clientehttp.NewHandler(intakeService, appcliente.NewService(clienteRepo), log),
		Expediente:    expedientehttp.NewHandler(expedienteService, log),
		Coordinadores: coordinadorhttp.NewHandler(appcoordinador.NewService(coordinadorRepo), log),
		Creditos:      creditohttp.NewHandler(appcredito.NewService(creditoRepo), log),
		Dashboard:     http.HandlerFunc(dashboard.Summary),
		Catalogos:     http.HandlerFunc(catalogohttp.List),
		Me:            http.HandlerFunc(sessionhttp.Me),
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	log.Info("starting HTTP server", "port", cfg.HTTP.Port, "auth_enabled", cfg.Auth.Enabled)
	return srv.Run(ctx)
}
