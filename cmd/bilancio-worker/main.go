package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/cli"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	store, cleanup := cli.InitLedger(logger, cfg)
	defer func() { _ = cleanup() }()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reports := services.NewReportService(store, store)
	workerLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	refresher := worker.NewRefreshWorker(reports, workerLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for err := range reports.Errors() {
			workerLogger.Error("Report refresh error", "error", err)
		}
	}()

	go func() {
		err := amqpClient.ConsumeLedgerChanged(ctx, func(msg *amqp.LedgerChangedMessage) error {
			return refresher.HandleLedgerChanged(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			workerLogger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	go refresher.RunPeriodic(ctx, cfg.RefreshInterval)

	logger.Info("Worker started",
		"queue", cfg.AMQPQueue,
		"refresh_interval", cfg.RefreshInterval.String())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	// Give in-flight handlers a moment to finish before the deferred
	// closes run.
	time.Sleep(2 * time.Second)
	logger.Info("Worker stopped")
}
