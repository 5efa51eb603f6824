package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/interfaces"
)

// startDailyScheduler runs the end-of-day job on the configured cron
// expression: record the daily snapshot, then generate the daily report.
// An empty expression disables the job. The returned func stops the scheduler.
func startDailyScheduler(config *common.Config, portfolioService interfaces.PortfolioService, reportService interfaces.ReportService, logger *common.Logger) (func(), error) {
	if config.Scheduler.Cron == "" {
		logger.Info().Msg("Scheduler disabled, no cron expression configured")
		return func() {}, nil
	}

	c := cron.New()
	_, err := c.AddFunc(config.Scheduler.Cron, func() {
		runDailyJob(portfolioService, reportService, config, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler cron expression %q: %w", config.Scheduler.Cron, err)
	}

	c.Start()
	logger.Info().Str("cron", config.Scheduler.Cron).Msg("Daily scheduler started")

	return func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
		logger.Info().Msg("Daily scheduler stopped")
	}, nil
}

func runDailyJob(portfolioService interfaces.PortfolioService, reportService interfaces.ReportService, config *common.Config, logger *common.Logger) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	snap, err := portfolioService.TakeSnapshot(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Daily job: snapshot failed")
		return
	}

	if config.Report.Enabled {
		_, err = reportService.GenerateDaily(ctx, interfaces.ReportOptions{
			Advice: config.Advice.Enabled,
			Chart:  config.Report.IncludeChart,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Daily job: report generation failed")
			return
		}
	}

	logger.Info().
		Str("date", snap.Date).
		Float64("total_assets", snap.TotalAssets).
		Dur("elapsed", time.Since(start)).
		Msg("Daily job: complete")
}
