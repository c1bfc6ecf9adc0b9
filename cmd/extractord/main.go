package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clearlane/invoice-extractor/internal/agent"
	"github.com/clearlane/invoice-extractor/internal/config"
	"github.com/clearlane/invoice-extractor/internal/export"
	"github.com/clearlane/invoice-extractor/internal/extract"
	"github.com/clearlane/invoice-extractor/internal/instructions"
	"github.com/clearlane/invoice-extractor/internal/server"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	// Env
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("loading .env: %v", err)
	}
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Inner packages log through slog.
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := instructions.NewStore(cfg.Customers.Dir, slogger)
	if err != nil {
		log.Fatalf("customer config store: %v", err)
	}

	agentClient := agent.NewClient(cfg.Agent, slogger)
	extractor := extract.NewService(agentClient, store, slogger)
	exporter := export.NewService(slogger)

	srv := server.New(cfg, extractor, exporter, store, agentClient, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infow("HTTP serving",
		"addr", cfg.Server.Addr,
		"agent_base_url", cfg.Agent.BaseURL,
		"has_api_key", cfg.Agent.APIKey != "",
	)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown: %v", err)
	}
	fmt.Println("stopped.")
}
