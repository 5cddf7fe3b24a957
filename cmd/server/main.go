package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/ridesplit/internal/config"
	"github.com/mmynk/ridesplit/internal/dispatch"
	"github.com/mmynk/ridesplit/internal/httpapi"
	"github.com/mmynk/ridesplit/internal/ledger"
	"github.com/mmynk/ridesplit/internal/metrics"
	"github.com/mmynk/ridesplit/internal/middleware"
	"github.com/mmynk/ridesplit/internal/service"
	"github.com/mmynk/ridesplit/internal/storage"
	"github.com/mmynk/ridesplit/internal/storage/jsonfile"
	"github.com/mmynk/ridesplit/internal/storage/postgres"
	"github.com/mmynk/ridesplit/internal/storage/sqlite"
	"github.com/mmynk/ridesplit/pkg/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Setup structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "backend", cfg.Storage.Backend)

	legCost := cfg.LegCostDecimal()
	engine := ledger.New(store, ledger.Config{LegCost: &legCost})
	slog.Info("Ledger ready", "leg_cost", engine.LegCost().String())
	if _, err := engine.Seed(ctx, cfg.Ledger.SeedCompanions); err != nil {
		return fmt.Errorf("failed to seed companions: %w", err)
	}

	m := metrics.New()
	mux := http.NewServeMux()

	// Register Connect service
	ledgerPath, ledgerHandler := service.NewLedgerServiceHandler(
		service.NewLedgerService(engine),
		connect.WithInterceptors(
			middleware.LoggingInterceptor(),
			middleware.MetricsInterceptor(m),
		),
	)
	mux.Handle(ledgerPath, ledgerHandler)

	// JSON action API
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	mux.Handle("/api/", httpapi.NewRouter(httpapi.NewLedgerHandler(dispatch.New(engine), m)))

	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Add request id, logging and CORS middleware
	handler := middleware.RequestID(middleware.AccessLog(middleware.CORS(mux)))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlite.New(cfg.Path)
	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.DSN)
	case config.BackendJSONFile:
		return jsonfile.New(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
