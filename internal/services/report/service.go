// Package report generates and persists daily portfolio reports.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/interfaces"
	"github.com/simfolio/simfolio/internal/models"
)

// Service implements ReportService
type Service struct {
	portfolio interfaces.PortfolioService
	advisor   interfaces.AdvisorService
	storage   interfaces.StorageManager
	config    *common.Config
	logger    *common.Logger
}

// NewService creates a new report service
func NewService(portfolio interfaces.PortfolioService, advisor interfaces.AdvisorService, storage interfaces.StorageManager, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		portfolio: portfolio,
		advisor:   advisor,
		storage:   storage,
		config:    config,
		logger:    logger,
	}
}

// GenerateDaily evaluates the portfolio, optionally generates operation
// advice and the weights chart, and stores the assembled report keyed by
// today's date. Chart or advice failures degrade the report rather than
// failing the run.
func (s *Service) GenerateDaily(ctx context.Context, options interfaces.ReportOptions) (*models.DailyReport, error) {
	snapshot, err := s.portfolio.Evaluate(ctx, options.Prices)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate portfolio: %w", err)
	}

	date := snapshot.GeneratedAt.Format("2006-01-02")

	var advice *models.OperationAdvice
	if options.Advice {
		payload, err := s.advisor.BuildPayload(ctx, snapshot, options.Analyses)
		if err != nil {
			return nil, fmt.Errorf("failed to build advice payload: %w", err)
		}
		advice, err = s.advisor.Advise(ctx, payload)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Advice generation failed, report continues without it")
			advice = nil
		}
	}

	var chartKey string
	if options.Chart {
		png, err := renderWeightsChart(snapshot)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Chart render skipped")
		} else if chartKey, err = s.storage.ReportStore().SaveChart(ctx, date, png); err != nil {
			s.logger.Warn().Err(err).Msg("Chart save failed, report continues without it")
			chartKey = ""
		}
	}

	report := &models.DailyReport{
		ID:          uuid.NewString(),
		Date:        date,
		GeneratedAt: time.Now(),
		Markdown:    formatDailyReport(snapshot, advice, chartKey),
		Advice:      advice,
		Snapshot:    snapshot,
		ChartKey:    chartKey,
	}

	if err := s.storage.ReportStore().SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	s.logger.Info().
		Str("date", report.Date).
		Bool("advice", advice != nil).
		Bool("chart", chartKey != "").
		Msg("Daily report generated")

	return report, nil
}
