package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/civicdex/internal/config"
	"github.com/kailas-cloud/civicdex/internal/corpus"
	dbValkey "github.com/kailas-cloud/civicdex/internal/db/valkey"
	logpkg "github.com/kailas-cloud/civicdex/internal/logger"
	"github.com/kailas-cloud/civicdex/internal/metrics"
	complaintrepo "github.com/kailas-cloud/civicdex/internal/repository/complaint"
	"github.com/kailas-cloud/civicdex/internal/repository/csvsource"
	chiTransport "github.com/kailas-cloud/civicdex/internal/transport/chi"
	complaintuc "github.com/kailas-cloud/civicdex/internal/usecase/complaint"
	detectoruc "github.com/kailas-cloud/civicdex/internal/usecase/detector"
	healthuc "github.com/kailas-cloud/civicdex/internal/usecase/health"
	"github.com/kailas-cloud/civicdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting civicdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus_source", cfg.Corpus.Source),
		zap.Bool("db_enabled", cfg.Database.Enabled),
	)

	ctx := context.Background()

	// Complaint storage is optional; a CSV-only deployment runs without it.
	var store *dbValkey.Store
	if cfg.Database.Enabled {
		// valkey and redis speak the same protocol; rueidis serves both drivers.
		store, err = dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Strings("addrs", cfg.Database.Addrs),
		)
	}

	var repo *complaintrepo.Repo
	if store != nil {
		repo = complaintrepo.New(store, cfg.Storage.KeyPrefix)
	}

	var source detectoruc.Source
	switch cfg.Corpus.Source {
	case config.SourceStore:
		source = repo
	default:
		csvSrc := csvsource.New(cfg.Corpus.CSVPath)
		logger.Info("Loading corpus from CSV", zap.String("path", csvSrc.Path()))
		source = csvSrc
	}

	detectorMetrics, err := metrics.NewDetector(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to register detector metrics", zap.Error(err))
	}
	httpMetrics, err := metrics.NewHTTP(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	detectorSvc := detectoruc.New(source, logger).
		WithOptions(corpus.Options{
			MaxFeatures: cfg.Detector.MaxFeatures,
			Workers:     cfg.Detector.FitWorkers,
		}).
		WithDefaultThreshold(cfg.Threshold()).
		WithMetrics(detectorMetrics)

	// A failed initial fit leaves the service up but not fitted; /health reports it
	// and POST /corpus/retrain can be retried.
	if cfg.ShouldRetrainOnStart() {
		if st, err := detectorSvc.Retrain(ctx); err != nil {
			logger.Error("Initial corpus fit failed", zap.Error(err))
		} else {
			logger.Info("Initial corpus fitted",
				zap.Int("complaints", st.Complaints),
				zap.Int("vocabulary", st.Vocabulary),
				zap.Int("areas", st.Areas),
			)
		}
	}

	// Pass nil interfaces, not typed nil pointers, when storage is disabled.
	var complaintSvc *complaintuc.Service
	var pinger healthuc.DBPinger
	if store != nil {
		complaintSvc = complaintuc.New(repo, repo).WithMaxBatchSize(cfg.Corpus.MaxBatchSize)
		pinger = store
	}
	healthSvc := healthuc.New(pinger, detectorSvc)

	server := chiTransport.NewServer(detectorSvc, complaintSvc, healthSvc, logger)
	r := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		APIKeys:     cfg.Auth.APIKeys,
		HTTPMetrics: httpMetrics,
		Gatherer:    prometheus.DefaultGatherer,
		Logger:      logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
