// Package main is the entry point for the Stresswatch financial stress
// scoring service. The service ingests customer records, trains a gradient
// boosted risk model, and serves risk assessments, stress simulations, and
// proactive intervention offers over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"

	"github.com/aristath/stresswatch/internal/clientdata"
	"github.com/aristath/stresswatch/internal/clients/grok"
	"github.com/aristath/stresswatch/internal/config"
	"github.com/aristath/stresswatch/internal/database"
	"github.com/aristath/stresswatch/internal/events"
	"github.com/aristath/stresswatch/internal/modules/assessment"
	"github.com/aristath/stresswatch/internal/modules/customers"
	"github.com/aristath/stresswatch/internal/modules/datagen"
	"github.com/aristath/stresswatch/internal/modules/risk"
	"github.com/aristath/stresswatch/internal/modules/simulation"
	"github.com/aristath/stresswatch/internal/reliability"
	"github.com/aristath/stresswatch/internal/scheduler"
	"github.com/aristath/stresswatch/internal/server"
	"github.com/aristath/stresswatch/pkg/logger"
)

const syntheticSeed = 42

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Stresswatch")

	// Databases: stress.db holds customers and assessment runs, cache.db
	// holds ephemeral blobs (feature snapshots, AI insight cache).
	stressDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "stress.db"),
		Profile: database.ProfileStandard,
		Name:    "stress",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open stress database")
	}
	defer stressDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	if err := stressDB.ApplySchema(customers.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply customers schema")
	}
	if err := stressDB.ApplySchema(assessment.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply assessment schema")
	}
	if err := cacheDB.ApplySchema(clientdata.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply cache schema")
	}

	// Repositories
	customerRepo := customers.NewRepository(stressDB.Conn())
	runRepo := assessment.NewRepository(stressDB.Conn())
	cacheRepo := clientdata.NewRepository(cacheDB.Conn())

	// Seed the customer store: prefer the configured JSON file, fall back
	// to synthetic records in dev mode.
	if err := seedCustomers(cfg, customerRepo, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to load customer data")
	}

	// Event bus feeding the SSE and websocket streams
	bus := events.NewBus()

	// AI insight client. Without an API key it degrades to a static
	// unavailable message.
	grokClient := grok.NewClient(grok.Config{
		APIKey:  cfg.XAIAPIKey,
		BaseURL: cfg.XAIBaseURL,
		Model:   cfg.XAIModel,
	}, cacheRepo, log)

	service := assessment.NewService(assessment.Deps{
		Classifier:     risk.NewClassifier(log),
		Customers:      customerRepo,
		Runs:           runRepo,
		Cache:          cacheRepo,
		Insights:       grokClient,
		Simulator:      simulation.New(log),
		Bus:            bus,
		InsightTargets: cfg.InsightTargets,
		Log:            log,
	})

	// Initial training. Failure is not fatal: the /api/retrain endpoint
	// and the scheduled job can recover once data problems are fixed.
	if err := service.Train(); err != nil {
		log.Error().Err(err).Msg("Initial model training failed")
	}

	// Background jobs
	sched := scheduler.New(log)

	retrainJob := scheduler.NewRetrainJob(service)
	retrainJob.SetLogger(log)
	if err := sched.AddJob(cfg.RetrainSchedule, retrainJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register retrain job")
	}

	cleanupJob := scheduler.NewCacheCleanupJob(cacheRepo)
	cleanupJob.SetLogger(log)
	if err := sched.AddJob("@hourly", cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}

	var backupSvc *reliability.BackupService
	if cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(context.Background(), cfg.Backup, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 client")
		}
		backupSvc = reliability.NewBackupService(s3Client, map[string]*database.DB{
			stressDB.Name(): stressDB,
			cacheDB.Name():  cacheDB,
		}, cfg.DataDir, log)

		backupJob := scheduler.NewBackupJob(backupSvc)
		backupJob.SetLogger(log)
		if err := sched.AddJob("@daily", backupJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}

	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Log:          log,
		StressDB:     stressDB,
		CacheDB:      cacheDB,
		Config:       cfg,
		Service:      service,
		CustomerRepo: customerRepo,
		RunRepo:      runRepo,
		Bus:          bus,
		Backup:       backupSvc,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// seedCustomers fills the customer store from the configured JSON file. When
// the file is missing and dev mode is on, a synthetic set is generated
// instead so the service is usable out of the box.
func seedCustomers(cfg *config.Config, repo *customers.Repository, log zerolog.Logger) error {
	records, err := customers.LoadFromFile(cfg.CustomerDataPath)
	switch {
	case err == nil:
		log.Info().
			Int("customers", len(records)).
			Str("path", cfg.CustomerDataPath).
			Msg("Loaded customer data file")

	case errors.Is(err, os.ErrNotExist) && cfg.DevMode:
		gen := datagen.New(syntheticSeed)
		records = gen.Generate(cfg.SyntheticCount)
		log.Info().
			Int("customers", len(records)).
			Msg("Generated synthetic customer data")

	default:
		return err
	}

	return repo.SaveAll(records)
}
