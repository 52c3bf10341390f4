package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/riskdesk/internal/cache"
	"github.com/aristath/riskdesk/internal/clients/yahoo"
	"github.com/aristath/riskdesk/internal/config"
	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/modules/attribution"
	"github.com/aristath/riskdesk/internal/modules/beta"
	"github.com/aristath/riskdesk/internal/modules/marketdata"
	"github.com/aristath/riskdesk/internal/modules/portfolio"
	"github.com/aristath/riskdesk/internal/modules/returns"
	"github.com/aristath/riskdesk/internal/modules/risk"
	"github.com/aristath/riskdesk/internal/modules/stress"
	"github.com/aristath/riskdesk/internal/scheduler"
	"github.com/aristath/riskdesk/internal/server"
	"github.com/aristath/riskdesk/internal/services"
	"github.com/aristath/riskdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet; a plain panic is the best we can do
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting risk analytics engine")

	// Three databases: price history, portfolio state, derived analytics.
	historyDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/history.db",
		Profile: database.ProfileHistory,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history database")
	}
	defer historyDB.Close()

	portfolioDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/portfolio.db",
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize portfolio database")
	}
	defer portfolioDB.Close()

	analyticsDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/analytics.db",
		Profile: database.ProfileAnalytics,
		Name:    "analytics",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize analytics database")
	}
	defer analyticsDB.Close()

	for _, db := range []*database.DB{historyDB, portfolioDB, analyticsDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to apply schema")
		}
	}

	// Repositories
	marketData := marketdata.NewRepository(historyDB.Conn(), log)
	portfolios := portfolio.NewRepository(portfolioDB.Conn(), log)
	betaRepo := beta.NewRepository(analyticsDB.Conn(), log)
	exposureRepo := attribution.NewRepository(analyticsDB.Conn(), log)
	metricsRepo := risk.NewRepository(analyticsDB.Conn(), log)
	runs := services.NewRunRepository(analyticsDB.Conn(), log)

	// Calculation pipeline
	calcCache := cache.New(cfg.CacheSize, cfg.CacheTTL, log)
	calc := services.NewCalculationService(services.Config{
		MarketData:   marketData,
		Portfolios:   portfolios,
		Builder:      returns.NewBuilder(log),
		Estimator:    beta.NewEstimator(cfg.MinRegressionDays, log),
		Gate:         beta.NewQualityGate(log),
		Aggregator:   attribution.NewAggregator(log),
		CovBuilder:   risk.NewCovarianceBuilder(log),
		RiskEngine:   risk.NewEngine(cfg.RiskFreeRate, log),
		StressEngine: stress.NewEngine(log),
		BetaRepo:     betaRepo,
		ExposureRepo: exposureRepo,
		MetricsRepo:  metricsRepo,
		Runs:         runs,
		AnalyticsDB:  analyticsDB.Conn(),
		Cache:        calcCache,
		LookbackDays: cfg.LookbackDays,
		Log:          log,
	})

	// Background jobs
	sched := scheduler.New(log)

	yahooClient := yahoo.NewClient(log)
	priceSync := scheduler.NewPriceSyncJob(yahooClient, marketData, portfolios, "2y", log)
	if err := sched.AddJob(cfg.PriceSyncSchedule, priceSync); err != nil {
		log.Fatal().Err(err).Msg("Failed to register price_sync job")
	}

	recalcJob := scheduler.NewRecalculationJob(calc, portfolios, cfg.MaxParallelCalcs, log)
	if err := sched.AddJob(cfg.RecalcSchedule, recalcJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register recalculation job")
	}

	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		Calc:        calc,
		Runs:        runs,
		Scheduler:   sched,
		RecalcJob:   recalcJob,
		PriceSync:   priceSync,
		HistoryDB:   historyDB,
		PortfolioDB: portfolioDB,
		AnalyticsDB: analyticsDB,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

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
