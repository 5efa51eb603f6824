package interfaces

import (
	"context"

	"github.com/simfolio/simfolio/internal/models"
)

// PortfolioService manages the simulated portfolio: trade settlement, price
// refresh, and evaluation runs.
type PortfolioService interface {
	// GetPortfolio loads the portfolio, creating an empty one on first use
	GetPortfolio(ctx context.Context) (*models.Portfolio, error)

	// RecordTrade settles a trade against available cash and persists the result
	RecordTrade(ctx context.Context, req TradeRequest) (*models.Trade, error)

	// UpdatePrices refreshes current prices for held codes; unknown codes are ignored
	UpdatePrices(ctx context.Context, prices map[string]float64) error

	// Evaluate produces an evaluation snapshot without mutating the portfolio.
	// Prices, when non-nil, override stored current prices for this run only.
	Evaluate(ctx context.Context, prices map[string]float64) (*models.EvaluationSnapshot, error)

	// TakeSnapshot records today's daily account snapshot
	TakeSnapshot(ctx context.Context) (*models.DailySnapshot, error)

	// ListTrades returns the most recent n journal entries
	ListTrades(ctx context.Context, n int) ([]*models.Trade, error)
}

// TradeRequest describes one trade to settle.
type TradeRequest struct {
	Action models.TradeAction `json:"action"`
	Code   string             `json:"code"`
	Name   string             `json:"name"`
	Shares int64              `json:"shares"`
	Price  float64            `json:"price"`
	Reason string             `json:"reason,omitempty"`
}

// AdvisorService turns a snapshot plus external analyses into operation advice.
type AdvisorService interface {
	// BuildPayload assembles the advice request payload
	BuildPayload(ctx context.Context, snapshot *models.EvaluationSnapshot, analyses map[string]*models.StockAnalysis) (*models.AdvicePayload, error)

	// Advise generates operation advice; falls back to the rule engine when
	// the AI client is unavailable
	Advise(ctx context.Context, payload *models.AdvicePayload) (*models.OperationAdvice, error)

	// QuickSummary renders a one-screen console digest of a snapshot
	QuickSummary(snapshot *models.EvaluationSnapshot) string
}

// ReportService generates and persists daily reports.
type ReportService interface {
	// GenerateDaily runs evaluate → advise → format → store
	GenerateDaily(ctx context.Context, options ReportOptions) (*models.DailyReport, error)
}

// ReportOptions configures report generation.
type ReportOptions struct {
	Prices   map[string]float64               // optional price overrides for the run
	Analyses map[string]*models.StockAnalysis // externally supplied analyses
	Advice   bool                             // include AI operation advice
	Chart    bool                             // render the weights chart
}
