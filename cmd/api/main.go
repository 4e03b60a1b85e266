package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/events/amqp"
	"github.com/MrJamesThe3rd/tally/internal/export/sheets"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	accountHandler "github.com/MrJamesThe3rd/tally/internal/http/account"
	authHandler "github.com/MrJamesThe3rd/tally/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/tally/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/tally/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/tally/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/tally/internal/http/transaction"
	"github.com/MrJamesThe3rd/tally/internal/storage"
	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	repo, closeRepo, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	var publisher events.Publisher = events.Noop{}

	if cfg.AMQP.URL != "" {
		p, err := amqp.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return fmt.Errorf("connecting to broker: %w", err)
		}
		defer p.Close()

		publisher = p
		slog.Info("publishing events", "exchange", cfg.AMQP.Exchange)
	}

	var sink exportHandler.Sink

	if cfg.Sheets.SpreadsheetID != "" {
		client, err := sheets.New(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName,
			goption.WithCredentialsFile(cfg.Sheets.ServiceAccountFile))
		if err != nil {
			return fmt.Errorf("connecting to sheets: %w", err)
		}

		sink = client
	}

	svc, err := workspace.New(ctx, repo, publisher, auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TTL))
	if err != nil {
		return err
	}

	router := tallyHttp.New(tallyHttp.Handlers{
		Auth:         authHandler.NewHandler(svc, cfg.App.SeedDemo),
		Accounts:     accountHandler.NewHandler(svc),
		Transactions: txHandler.NewHandler(svc),
		Reports:      reportHandler.NewHandler(svc),
		Export:       exportHandler.NewHandler(svc, sink, cfg.App.Currency),
		Import:       importHandler.NewHandler(svc),
		Rules:        matchingHandler.NewHandler(svc),
	}, cfg.HTTP.AllowedOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "port", cfg.App.Port, "backend", cfg.Storage.Backend)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
