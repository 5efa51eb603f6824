package interfaces

import (
	"context"

	"github.com/simfolio/simfolio/internal/models"
)

// PortfolioStore persists the portfolio document.
type PortfolioStore interface {
	// GetPortfolio loads the persisted portfolio, or an error when absent
	GetPortfolio(ctx context.Context) (*models.Portfolio, error)

	// SavePortfolio persists the portfolio
	SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error
}

// JournalStore persists trade journal entries and daily snapshots.
type JournalStore interface {
	// AppendTrade appends one settled trade to the journal
	AppendTrade(ctx context.Context, trade *models.Trade) error

	// ListTrades returns the most recent n trades, oldest first; n <= 0 returns all
	ListTrades(ctx context.Context, n int) ([]*models.Trade, error)

	// SaveDailySnapshot upserts the snapshot for its date
	SaveDailySnapshot(ctx context.Context, snapshot *models.DailySnapshot) error

	// ListDailySnapshots returns snapshots ordered by date ascending
	ListDailySnapshots(ctx context.Context) ([]*models.DailySnapshot, error)
}

// ReportStore persists generated reports and their charts.
type ReportStore interface {
	// SaveReport persists a daily report keyed by date
	SaveReport(ctx context.Context, report *models.DailyReport) error

	// GetReport loads the report for a date key
	GetReport(ctx context.Context, date string) (*models.DailyReport, error)

	// SaveChart writes raw PNG bytes and returns the storage key
	SaveChart(ctx context.Context, date string, png []byte) (string, error)
}

// StorageManager exposes the typed storage areas.
type StorageManager interface {
	PortfolioStore() PortfolioStore
	JournalStore() JournalStore
	ReportStore() ReportStore

	// Close releases storage resources
	Close() error
}
