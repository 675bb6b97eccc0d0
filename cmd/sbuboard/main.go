package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"sbuboard/internal/amqp"
	"sbuboard/internal/cli"
	apphttp "sbuboard/internal/http"
	applog "sbuboard/internal/log"
	"sbuboard/internal/ratelimit"
	"sbuboard/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig()
	logger.Info("Starting sbuboard",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend)

	app, err := cli.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dashboard", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// Refresh notices are optional; the board still serves cached data.
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			amqpClient = nil
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:      ":" + cfg.Port,
		Board:     app.Board,
		Stores:    app.Stores,
		Reader:    app.Backend.Reader,
		Registry:  app.Registry,
		Ping:      app.Backend.Ping,
		RateLimit: ratelimit.DefaultConfig(),
		Logger:    logger,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if err := app.Close(); err != nil {
			logger.Error("Dashboard shutdown error", applog.FieldError, err)
		}
	})

	if err := app.Start(ctx, cfg); err != nil {
		logger.Error("Failed to watch deck file", applog.FieldError, err, "deck", cfg.DeckFile)
	}

	refresher := worker.NewRefreshWorker(app.Registry, logger)
	if amqpClient != nil {
		go func() {
			if err := refresher.Run(ctx, amqpClient); err != nil {
				logger.Error("Refresh consumption failed", applog.FieldError, err)
			}
		}()
	}
	go refresher.Poll(ctx, cfg.RefreshInterval)

	logger.Info("Listening", "addr", srv.Addr, "slides", app.Board.Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
