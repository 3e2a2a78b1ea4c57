package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"GatePass/internal/api"
	"GatePass/internal/campaign"
	"GatePass/internal/config"
	"GatePass/internal/dispatch"
	"GatePass/internal/mail"
	"GatePass/internal/metrics"
	"GatePass/internal/progress"
	"GatePass/internal/queue"
	"GatePass/internal/render"
	"GatePass/internal/schedule"
	"GatePass/internal/store"
)

func main() {

	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	// ------------------------------------------------
	// Database
	// ------------------------------------------------
	db, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Job Queue
	// ------------------------------------------------
	retry := queue.RetryPolicy{
		BaseDelay:   cfg.RetryBaseDelay,
		MaxAttempts: cfg.RetryAttempts,
	}

	var (
		jobs   queue.Queue
		closeQ func()
	)
	if cfg.AMQPURL != "" {
		q, err := queue.NewAMQP(cfg.AMQPURL, retry, cfg.WorkerCount)
		if err != nil {
			logger.Fatal("amqp connection failed", zap.Error(err))
		}
		jobs, closeQ = q, func() { q.Close() }
		logger.Info("using amqp job queue")
	} else {
		q := queue.NewMemory(retry)
		jobs, closeQ = q, q.Close
		logger.Info("using in-memory job queue")
	}

	// ------------------------------------------------
	// Mail Transport
	// ------------------------------------------------
	sender := &mail.Sender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	// ------------------------------------------------
	// Progress Aggregator
	// ------------------------------------------------
	aggregator := &progress.Aggregator{
		Campaigns: db,
		Logs:      db,
		Logger:    logger,
	}

	// ------------------------------------------------
	// Dispatch Worker Pool
	// ------------------------------------------------
	dispatcher := &dispatch.Dispatcher{
		Queue:        jobs,
		Campaigns:    db,
		Participants: db,
		Logs:         db,
		Renderer:     render.PayloadRenderer{},
		Transport:    sender,
		Progress:     aggregator,
		Logger:       logger,
		SendTimeout:  cfg.SendTimeout,
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)

	var wg sync.WaitGroup
	dispatch.StartPool(ctx, &wg, cfg.WorkerCount, dispatcher, limiter)

	// ------------------------------------------------
	// Campaign Launcher
	// ------------------------------------------------
	launcher := &campaign.Launcher{
		Campaigns:    db,
		Participants: db,
		Logs:         db,
		Queue:        jobs,
		Policy: schedule.Policy{
			BatchSize:     cfg.BatchSize,
			BatchInterval: cfg.BatchInterval,
			Stagger:       cfg.Stagger,
		},
		Logger: logger,
	}

	// ------------------------------------------------
	// HTTP API Server
	// ------------------------------------------------
	server := api.NewServer(db, db, launcher, aggregator, logger)

	apiServer := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: server.Routes(),
	}

	go func() {
		logger.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	<-ctx.Done()

	logger.Info("shutting down services...")

	// Stop handing out jobs, then wait for in-flight work.
	closeQ()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("application shutdown complete")
}
