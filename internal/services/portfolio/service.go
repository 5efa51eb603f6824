// Package portfolio manages the simulated portfolio: trade settlement,
// price refresh, and evaluation runs.
package portfolio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/engine"
	"github.com/simfolio/simfolio/internal/interfaces"
	"github.com/simfolio/simfolio/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	config  *common.Config
	logger  *common.Logger

	// Serializes mutating runs. Evaluation itself is pure and lock-free.
	mu sync.Mutex
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		config:  config,
		logger:  logger,
	}
}

// GetPortfolio loads the portfolio, creating an empty one from the configured
// defaults on first use.
func (s *Service) GetPortfolio(ctx context.Context) (*models.Portfolio, error) {
	p, err := s.storage.PortfolioStore().GetPortfolio(ctx)
	if err == nil {
		return p, nil
	}

	risk := s.config.Risk
	p = models.NewPortfolio(risk.InitialCapital, models.RiskPolicy{
		StopLossPct:          risk.StopLossPct,
		TakeProfitPct:        risk.TakeProfitPct,
		MaxSinglePositionPct: risk.MaxSinglePositionPct,
		MaxTotalPositionPct:  risk.MaxTotalPositionPct,
		CommissionRate:       risk.CommissionRate,
		StampDutyRate:        risk.StampDutyRate,
		MinCommission:        risk.MinCommission,
	})
	s.logger.Info().Float64("initial_capital", p.InitialCapital).Msg("Created new portfolio from defaults")

	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save new portfolio: %w", err)
	}
	return p, nil
}

// RecordTrade settles a trade against available cash and persists the result.
// Buys use weighted-average cost accounting; a sell that exhausts the share
// count removes the position. The portfolio is left unchanged on any failure.
func (s *Service) RecordTrade(ctx context.Context, req interfaces.TradeRequest) (*models.Trade, error) {
	if !s.config.Portfolio.Enabled {
		return nil, fmt.Errorf("%w: portfolio tracking is disabled", engine.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.GetPortfolio(ctx)
	if err != nil {
		return nil, err
	}

	var trade *models.Trade
	switch {
	case req.Action.IsBuy():
		trade, err = s.settleBuy(p, req)
	case req.Action.IsSell():
		trade, err = s.settleSell(p, req)
	default:
		err = fmt.Errorf("%w: unknown trade action %q", engine.ErrInvalidInput, req.Action)
	}
	if err != nil {
		return nil, err
	}

	p.UpdatedAt = time.Now().Format(timestampLayout)
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}
	if err := s.storage.JournalStore().AppendTrade(ctx, trade); err != nil {
		s.logger.Warn().Err(err).Str("code", trade.Code).Msg("Failed to append trade to journal")
	}

	s.logger.Info().
		Str("action", string(trade.Action)).
		Str("code", trade.Code).
		Int64("shares", trade.Shares).
		Float64("net", trade.Net).
		Float64("cash", p.AvailableCash).
		Msg("Trade settled")

	return trade, nil
}

func (s *Service) settleBuy(p *models.Portfolio, req interfaces.TradeRequest) (*models.Trade, error) {
	costs, err := engine.Costs(p.RiskPolicy, engine.SideBuy, req.Price, req.Shares)
	if err != nil {
		return nil, err
	}

	if costs.Net > p.AvailableCash {
		return nil, fmt.Errorf("%w: trade requires %.2f but only %.2f cash is available",
			engine.ErrSettlementViolation, costs.Net, p.AvailableCash)
	}

	now := time.Now()
	if pos, ok := p.Positions[req.Code]; ok {
		// Weighted-average cost basis across the combined holding.
		totalShares := pos.Shares + req.Shares
		pos.CostPrice = (pos.CostAmount() + req.Price*float64(req.Shares)) / float64(totalShares)
		pos.Shares = totalShares
		pos.LastUpdate = now.Format(timestampLayout)
		if req.Name != "" {
			pos.Name = req.Name
		}
		if req.Reason != "" {
			pos.Notes = req.Reason
		}
	} else {
		p.Positions[req.Code] = &models.Position{
			Code:       req.Code,
			Name:       req.Name,
			Shares:     req.Shares,
			CostPrice:  req.Price,
			BuyDate:    now.Format("2006-01-02"),
			LastUpdate: now.Format(timestampLayout),
			Notes:      req.Reason,
		}
	}
	p.AvailableCash -= costs.Net

	return s.newTrade(req, costs, now), nil
}

func (s *Service) settleSell(p *models.Portfolio, req interfaces.TradeRequest) (*models.Trade, error) {
	pos, ok := p.Positions[req.Code]
	if !ok {
		return nil, fmt.Errorf("%w: no position held for %s", engine.ErrInvalidInput, req.Code)
	}
	if req.Shares > pos.Shares {
		return nil, fmt.Errorf("%w: sell of %d shares exceeds the %d held for %s",
			engine.ErrInvalidInput, req.Shares, pos.Shares, req.Code)
	}

	costs, err := engine.Costs(p.RiskPolicy, engine.SideSell, req.Price, req.Shares)
	if err != nil {
		return nil, err
	}
	// The minimum commission can exceed gross proceeds on a tiny sell,
	// leaving negative net proceeds that cash must be able to absorb.
	if costs.Net < 0 && p.AvailableCash+costs.Net < 0 {
		return nil, fmt.Errorf("%w: sell proceeds of %.2f after costs exceed available cash %.2f",
			engine.ErrSettlementViolation, costs.Net, p.AvailableCash)
	}

	now := time.Now()
	pos.Shares -= req.Shares
	pos.LastUpdate = now.Format(timestampLayout)
	p.AvailableCash += costs.Net

	// A position sold down to zero is closed and removed, not retained.
	if pos.Shares == 0 {
		delete(p.Positions, req.Code)
	}

	if req.Name == "" {
		req.Name = pos.Name
	}
	return s.newTrade(req, costs, now), nil
}

func (s *Service) newTrade(req interfaces.TradeRequest, costs engine.TradeCosts, now time.Time) *models.Trade {
	return &models.Trade{
		ID:         uuid.NewString(),
		Timestamp:  now,
		Action:     req.Action,
		Code:       req.Code,
		Name:       req.Name,
		Shares:     req.Shares,
		Price:      req.Price,
		Gross:      costs.Gross,
		Commission: costs.Commission,
		StampDuty:  costs.StampDuty,
		Net:        costs.Net,
		Reason:     req.Reason,
	}
}

// UpdatePrices refreshes current prices for held codes; unknown codes are
// ignored so a broad price feed can be applied wholesale.
func (s *Service) UpdatePrices(ctx context.Context, prices map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.GetPortfolio(ctx)
	if err != nil {
		return err
	}

	updated := 0
	now := time.Now().Format(timestampLayout)
	for code, price := range prices {
		pos, ok := p.Positions[code]
		if !ok || price <= 0 {
			continue
		}
		pos.CurrentPrice = price
		pos.LastUpdate = now
		updated++
	}

	if updated == 0 {
		return nil
	}

	p.UpdatedAt = now
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().Int("updated", updated).Msg("Prices refreshed")
	return nil
}

// Evaluate produces an evaluation snapshot without mutating the portfolio.
// Prices, when non-nil, override stored current prices for this run only.
func (s *Service) Evaluate(ctx context.Context, prices map[string]float64) (*models.EvaluationSnapshot, error) {
	p, err := s.GetPortfolio(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := engine.Evaluate(p, prices)

	s.logger.Debug().
		Float64("equity", snapshot.TotalEquity).
		Float64("exposure_pct", snapshot.ExposurePct).
		Int("alerts", len(snapshot.Alerts)).
		Msg("Portfolio evaluated")

	return snapshot, nil
}

// TakeSnapshot records today's daily account snapshot. Daily P&L is measured
// against the most recent prior snapshot.
func (s *Service) TakeSnapshot(ctx context.Context) (*models.DailySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evaluation, err := s.Evaluate(ctx, nil)
	if err != nil {
		return nil, err
	}

	snap := &models.DailySnapshot{
		Date:           time.Now().Format("2006-01-02"),
		TotalAssets:    evaluation.TotalEquity,
		TotalReturnPct: evaluation.TotalReturnPct,
	}

	previous, err := s.storage.JournalStore().ListDailySnapshots(ctx)
	if err == nil {
		for i := len(previous) - 1; i >= 0; i-- {
			if previous[i].Date < snap.Date {
				snap.DailyPnL = snap.TotalAssets - previous[i].TotalAssets
				if previous[i].TotalAssets != 0 {
					snap.DailyReturnPct = snap.DailyPnL / previous[i].TotalAssets * 100
				}
				break
			}
		}
	}

	if err := s.storage.JournalStore().SaveDailySnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to save daily snapshot: %w", err)
	}

	s.logger.Info().
		Str("date", snap.Date).
		Float64("total_assets", snap.TotalAssets).
		Float64("daily_pnl", snap.DailyPnL).
		Msg("Daily snapshot recorded")

	return snap, nil
}

// ListTrades returns the most recent n journal entries.
func (s *Service) ListTrades(ctx context.Context, n int) ([]*models.Trade, error) {
	return s.storage.JournalStore().ListTrades(ctx, n)
}
