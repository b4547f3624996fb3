package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paularlott/cli"
	"golang.org/x/sync/errgroup"

	"github.com/ducttapeprodigy/boilerplate/internal/api"
	"github.com/ducttapeprodigy/boilerplate/internal/auth"
	"github.com/ducttapeprodigy/boilerplate/internal/config"
	"github.com/ducttapeprodigy/boilerplate/internal/log"
	"github.com/ducttapeprodigy/boilerplate/internal/mcp"
	"github.com/ducttapeprodigy/boilerplate/internal/metrics"
	"github.com/ducttapeprodigy/boilerplate/internal/model"
	"github.com/ducttapeprodigy/boilerplate/internal/storage"
	"github.com/ducttapeprodigy/boilerplate/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// demo account from the mock user table
const (
	demoUsername = "testuser"
	demoEmail    = "test@example.com"
	demoPassword = "testpassword"
)

// App holds everything the HTTP server needs
type App struct {
	Config    *config.Config
	Store     storage.Storage
	Metrics   *metrics.Metrics
	MCPServer *mcp.Server
	Scheduler *worker.Scheduler

	handler http.Handler
}

// NewApp opens storage, seeds accounts and wires the routes. The caller
// must Close the App.
func NewApp(cfg *config.Config) (*App, error) {
	store, err := storage.NewStorage(cfg.StorageBackend)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	log.Info("Storage initialized", "backend", cfg.StorageBackend)

	if err := seedAccounts(cfg, store); err != nil {
		store.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenManager(cfg.SecretKey, cfg.TokenTTL)
	if err != nil {
		store.Close()
		return nil, err
	}
	if cfg.UsesDefaultSecret() {
		log.Warn("Using the default secret key, set APP_SECRET_KEY in production")
	}

	m := metrics.New()
	app := &App{
		Config:    cfg,
		Store:     store,
		Metrics:   m,
		MCPServer: mcp.NewServer(store, m, cfg.MCPToken, cfg.MaxRecords),
		Scheduler: worker.NewScheduler(),
	}

	if cfg.FixtureSchedule != "" {
		task := worker.FixtureRefreshTask(cfg.FixtureParams(), cfg.FixtureOutput, cfg.MaxRecords, m)
		if err := app.Scheduler.RegisterTask(worker.FixtureRefreshTaskID, "Refresh fixture file", cfg.FixtureSchedule, task); err != nil {
			store.Close()
			return nil, err
		}
	}

	apiHandler := api.NewHandler(store, tokens, api.WithMetrics(m), api.WithMaxRecords(cfg.MaxRecords))

	mux := http.NewServeMux()
	apiHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", api.AuthMiddleware(cfg.MetricsToken, m.Handler()))
	mux.HandleFunc("/mcp", app.MCPServer.HandleRequest)

	app.handler = api.Chain(m.Middleware(mux),
		api.RequestLoggerMiddleware,
		api.CORSMiddleware(cfg.CORSOrigin),
		api.SecurityHeadersMiddleware,
	)
	return app, nil
}

// Handler returns the fully wrapped HTTP handler
func (a *App) Handler() http.Handler {
	return a.handler
}

// Close stops the scheduler and releases storage
func (a *App) Close() error {
	a.Scheduler.Stop()
	return a.Store.Close()
}

func seedAccounts(cfg *config.Config, store storage.Storage) error {
	if cfg.SeedDemoUser {
		created, err := storage.SeedUser(store, demoUsername, demoEmail, demoPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("Demo user created", "username", demoUsername)
		}
	}
	if cfg.AdminPassword != "" {
		created, err := storage.SeedUser(store, model.AdminUsername, "admin@example.com", cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			log.Info("Admin user created", "username", model.AdminUsername)
		}
	}
	return nil
}

// Serve runs the HTTP server on ln until ctx is cancelled, then shuts down
// gracefully
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.Scheduler.Start()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	log.Info("Server stopped")
	return err
}

// RunServer listens on the configured address until SIGINT or SIGTERM
func RunServer(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.ListenAddr, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ln.Addr().String()
	log.Info("Starting server", "addr", addr)
	log.Info("API available", "url", "http://"+addr+"/")
	log.Info("Metrics available", "url", "http://"+addr+"/metrics")
	log.Info("MCP available", "url", "http://"+addr+"/mcp")
	if cfg.FixtureSchedule != "" {
		log.Info("Fixture refresh scheduled", "schedule", cfg.FixtureSchedule, "output", cfg.FixtureOutput)
	}
	app.MCPServer.LogStartup()

	return app.Serve(ctx, ln)
}

func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the API server",
		Description: "Start the HTTP server with auth, items, fixture, metrics and MCP endpoints",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log.Info("Configuration loaded", "listen_addr", cfg.ListenAddr, "storage", cfg.StorageBackend)
			return RunServer(ctx, cfg)
		},
	}
}
