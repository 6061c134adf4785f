package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairsplit/fairsplit/internal/api"
	"github.com/fairsplit/fairsplit/internal/assistant"
	"github.com/fairsplit/fairsplit/internal/config"
	"github.com/fairsplit/fairsplit/internal/events"
	"github.com/fairsplit/fairsplit/internal/guard"
	"github.com/fairsplit/fairsplit/internal/service"
	"github.com/fairsplit/fairsplit/internal/storage"
	"github.com/fairsplit/fairsplit/internal/storage/postgres"
	"github.com/fairsplit/fairsplit/internal/storage/sqlite"
	"github.com/fairsplit/fairsplit/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to open store", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Store initialized", "backend", cfg.Backend)

	var publisher service.Publisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("Failed to connect to AMQP broker", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
		slog.Info("Event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	balances := service.NewBalanceService(store, cfg.CacheSize, cfg.CacheTTL)
	groups := service.NewGroupService(store)
	expenses := service.NewExpenseService(store, guard.New(cfg.LockTimeout), balances, publisher)
	asst := assistant.New(store, balances, cfg.OpenAIKey, cfg.OpenAIModel)

	srv := &http.Server{
		Addr:           cfg.Bind,
		Handler:        api.New(groups, expenses, balances, asst).Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		slog.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	slog.Info("Starting server", "bind", cfg.Bind)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("Server stopped gracefully")
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Backend == "postgres" {
		return postgres.New(context.Background(), cfg.DatabaseURL)
	}
	return sqlite.New(cfg.SQLitePath)
}
