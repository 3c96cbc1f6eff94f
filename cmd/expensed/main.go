package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"expensed/internal/amqp"
	"expensed/internal/backend"
	"expensed/internal/config"
	"expensed/internal/identity"
	"expensed/internal/log"
	appmcp "expensed/internal/mcp"
	"expensed/internal/services"
	"expensed/internal/taxonomy"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	// Stdio transport reserves stdout for protocol framing, so all logging
	// goes to stderr regardless of transport.
	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel)})

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Data store. Construction never fails on a bad pool; the store reports
	// the captured error on every call instead.
	factory := backend.NewFactory(log.ForComponent(logger, log.ComponentBackend))
	result, err := factory.CreateStore(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		PostgresDSN:  cfg.DatabaseURL,
		PGMinConns:   int32(cfg.PGMinConns),
		PGMaxConns:   int32(cfg.PGMaxConns),
		PGRequireSSL: cfg.PGRequireSSL,
	})
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Event publishing is optional; the service degrades to store-only.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			events = nil
		} else {
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewExpenseService(result.Store, events, log.ForComponent(logger, log.ComponentStorage))
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Service shutdown error", "error", err)
		}
	}()

	guard := identity.NewGuard(identity.Mode(cfg.AuthMode), log.ForComponent(logger, log.ComponentIdentity))
	tax := taxonomy.Load(cfg.CategoriesPath, log.ForComponent(logger, log.ComponentTaxonomy))

	var tokens *identity.TokenService
	if cfg.AuthMode == string(identity.ModeToken) {
		tokens = identity.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	}

	srv := appmcp.NewServer(svc, guard, tax, log.ForComponent(logger, log.ComponentMCP))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		switch cfg.Transport {
		case "http":
			addr := ":" + cfg.Port
			logger.Info("Starting expensed server", "transport", "http", "addr", addr,
				"backend", cfg.DataBackend, "auth_mode", cfg.AuthMode)
			return srv.ServeHTTP(ctx, addr, tokens)
		default:
			logger.Info("Starting expensed server", "transport", "stdio",
				"backend", cfg.DataBackend, "auth_mode", cfg.AuthMode)
			return srv.ServeStdio()
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
