// Package main is the entry point for the Swarmfolio optimization service.
// It exposes the metaheuristic portfolio optimizers over HTTP and persists
// run results for later comparison.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/swarmfolio/internal/config"
	"github.com/aristath/swarmfolio/internal/database"
	"github.com/aristath/swarmfolio/internal/modules/optimization"
	"github.com/aristath/swarmfolio/internal/modules/results"
	"github.com/aristath/swarmfolio/internal/modules/universe"
	"github.com/aristath/swarmfolio/internal/server"
	"github.com/aristath/swarmfolio/pkg/logger"
)

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

	historyDB, err := database.New(database.Config{Path: cfg.HistoryDBPath(), Name: "history"})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	resultsDB, err := database.New(database.Config{Path: cfg.ResultsDBPath(), Name: "results"})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open results database")
	}
	defer resultsDB.Close()

	history := universe.NewHistoryDB(historyDB.Conn(), log)
	if err := history.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history schema")
	}

	runRepo := results.NewRunRepository(resultsDB.Conn(), log)
	if err := runRepo.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize results schema")
	}

	optimizerService := optimization.NewOptimizerService(history, runRepo, optimization.RunParams{
		Engines:        optimization.EngineNames,
		AssetCount:     cfg.AssetCount,
		PopulationSize: cfg.PopulationSize,
		Generations:    cfg.Generations,
		Runs:           cfg.RunsPerEngine,
		LookbackDays:   cfg.LookbackDays,
	}, log)

	srv := server.New(server.Config{
		Log:              log,
		Cfg:              cfg,
		OptimizerService: optimizerService,
		RunRepository:    runRepo,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server stopped unexpectedly")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
