package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retailsight/retailsight/internal/api"
	"github.com/retailsight/retailsight/internal/config"
	"github.com/retailsight/retailsight/internal/insight"
	"github.com/retailsight/retailsight/internal/llm"
	"github.com/retailsight/retailsight/internal/migrations"
	"github.com/retailsight/retailsight/internal/observability"
	"github.com/retailsight/retailsight/internal/store"
	duckdbstore "github.com/retailsight/retailsight/internal/store/duckdb"
	postgresstore "github.com/retailsight/retailsight/internal/store/postgres"
)

func main() {
	cfg, err := config.LoadFromEnv("retailsight-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	st, db, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	applied, err := migrations.NewRunner().Up(context.Background(), db, 0)
	if err != nil {
		logger.Error("failed to migrate store", slog.Any("error", err))
		os.Exit(1)
	}
	if applied > 0 {
		logger.Info("store schema migrated", slog.Int("applied", applied))
	}

	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize completion client", slog.Any("error", err))
		os.Exit(1)
	}

	analyzer := &insight.Service{
		Store:       st,
		LLM:         client,
		Logger:      logger,
		Temperature: cfg.AI.Temperature,
	}

	handler := api.NewHandler(cfg, api.Dependencies{
		Logger:            logger,
		Analyzer:          analyzer,
		Readiness:         st.HealthCheck,
		DependencyTimeout: time.Second,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("store_driver", cfg.Store.Driver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, *sql.DB, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		st, err := postgresstore.Open(ctx, postgresstore.Config{
			DSN:             cfg.Store.DSN,
			MaxOpenConns:    cfg.Store.MaxOpenConns,
			MaxIdleConns:    cfg.Store.MaxIdleConns,
			ConnMaxIdleTime: cfg.Store.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, st.DB(), nil
	default:
		st, err := duckdbstore.Open(ctx, cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.DB(), nil
	}
}
