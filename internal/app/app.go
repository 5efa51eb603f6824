// Package app wires configuration, storage, clients, and services into the
// shared core used by the server and CLI binaries.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/simfolio/simfolio/internal/clients/gemini"
	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/interfaces"
	"github.com/simfolio/simfolio/internal/services/advisor"
	"github.com/simfolio/simfolio/internal/services/portfolio"
	"github.com/simfolio/simfolio/internal/services/report"
	"github.com/simfolio/simfolio/internal/storage"
)

// App holds all initialized services and clients. It is the shared core used
// by cmd/simfolio-server and cmd/simfolio.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	AdviceClient     interfaces.AdviceClient
	PortfolioService interfaces.PortfolioService
	AdvisorService   interfaces.AdvisorService
	ReportService    interfaces.ReportService
	StartupTime      time.Time

	schedulerStop func()
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, SIMFOLIO_CONFIG, binary dir, then
	// the development fallback.
	if configPath == "" {
		configPath = os.Getenv("SIMFOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "simfolio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/simfolio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory for self-contained runs.
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	common.SetCurrencySymbol(config.Report.CurrencySymbol)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// The advice client is optional. Without a key the advisor falls back to
	// its rule engine.
	var adviceClient interfaces.AdviceClient
	if config.Advice.Enabled && config.Advice.APIKey != "" {
		adviceClient, err = gemini.NewClient(context.Background(), config.Advice.APIKey,
			gemini.WithModel(config.Advice.Model),
			gemini.WithRateLimit(config.Advice.RateLimit),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini client unavailable, advice falls back to rules")
			adviceClient = nil
		}
	} else {
		logger.Info().Msg("AI advice disabled, using rule-based advice")
	}

	portfolioService := portfolio.NewService(storageManager, config, logger)
	advisorService := advisor.NewService(adviceClient, config, logger)
	reportService := report.NewService(portfolioService, advisorService, storageManager, config, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		AdviceClient:     adviceClient,
		PortfolioService: portfolioService,
		AdvisorService:   advisorService,
		ReportService:    reportService,
		StartupTime:      time.Now(),
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("storage", config.Storage.Path).
		Dur("elapsed", time.Since(startupStart)).
		Msg("Application initialized")

	return a, nil
}

// StartScheduler starts the daily evaluation job when configured.
func (a *App) StartScheduler() error {
	stop, err := startDailyScheduler(a.Config, a.PortfolioService, a.ReportService, a.Logger)
	if err != nil {
		return err
	}
	a.schedulerStop = stop
	return nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	if a.schedulerStop != nil {
		a.schedulerStop()
	}
	if a.AdviceClient != nil {
		if err := a.AdviceClient.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close advice client")
		}
	}
	return a.Storage.Close()
}
