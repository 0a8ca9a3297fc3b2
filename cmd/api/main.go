package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/expense/store"
	"github.com/MrJamesThe3rd/tally/internal/export"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	expenseHandler "github.com/MrJamesThe3rd/tally/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/tally/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/tally/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/tally/internal/http/report"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

const shutdownTimeout = 5 * time.Second

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// run owns every resource of the server, so its deferred cleanup always runs
// before main exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	storage, closeStorage, err := store.Open(cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.Key)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	defer func() {
		if err := closeStorage(); err != nil {
			slog.Error("failed to close storage", "error", err)
		}
	}()

	var (
		expenseService = expense.NewService(storage,
			expense.WithRequiredNote(cfg.Expense.RequireNote),
			expense.WithLogger(logger),
		)
		matchingService = matching.NewService(expenseService)
		importService   = importer.NewService(expenseService, importer.WithCategorizer(matchingService))
		exportService   = export.NewService(expenseService)
	)

	router := tallyHttp.New(cfg.CORS.AllowedOrigins, tallyHttp.Handlers{
		Expenses: expenseHandler.NewHandler(expenseService),
		Import:   importHandler.NewHandler(importService),
		Matching: matchingHandler.NewHandler(matchingService),
		Export:   exportHandler.NewHandler(exportService, time.Now),
		Reports:  reportHandler.NewHandler(expenseService, time.Now),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return serve(ctx, srv, ln, shutdownTimeout)
}

// serve runs srv on ln until ctx is done, then waits for in-flight requests to drain.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	drained := make(chan error, 1)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		drained <- srv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting server", "addr", ln.Addr().String())

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-drained; err != nil {
		return fmt.Errorf("shut down server: %w", err)
	}

	return nil
}
