// Package models defines data structures for Simfolio
package models

import (
	"time"
)

// Position is a held quantity of one instrument with its cost basis.
// CurrentPrice is refreshed per evaluation run from external market data;
// zero means no price has been supplied yet.
type Position struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Shares       int64   `json:"shares"`
	CostPrice    float64 `json:"cost_price"`
	CurrentPrice float64 `json:"current_price,omitempty"`
	BuyDate      string  `json:"buy_date,omitempty"`
	LastUpdate   string  `json:"last_update,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// Priced reports whether a current price has been supplied for the position.
func (p *Position) Priced() bool {
	return p.CurrentPrice > 0
}

// CostAmount returns the total cost basis (cost price × shares).
func (p *Position) CostAmount() float64 {
	return float64(p.Shares) * p.CostPrice
}

// MarketValue returns the current market value, or 0 when unpriced.
func (p *Position) MarketValue() float64 {
	return float64(p.Shares) * p.CurrentPrice
}

// RiskPolicy holds the risk thresholds and trading cost parameters.
// Configured once per portfolio and read-only during evaluation.
type RiskPolicy struct {
	StopLossPct          float64 `json:"stop_loss_pct"`
	TakeProfitPct        float64 `json:"take_profit_pct"`
	MaxSinglePositionPct float64 `json:"max_single_position_pct"`
	MaxTotalPositionPct  float64 `json:"max_total_position_pct"`
	CommissionRate       float64 `json:"commission_rate"`
	StampDutyRate        float64 `json:"stamp_duty_rate"`
	MinCommission        float64 `json:"min_commission"`
}

// Portfolio is the simulated account container. RiskPolicy is embedded so the
// persisted JSON stays flat, matching the portfolio.json schema consumed by
// external tooling.
type Portfolio struct {
	InitialCapital float64 `json:"initial_capital"`
	AvailableCash  float64 `json:"available_cash"`
	RiskPolicy
	Positions map[string]*Position `json:"positions"`
	CreatedAt string               `json:"created_at,omitempty"`
	UpdatedAt string               `json:"updated_at,omitempty"`
}

// NewPortfolio creates an empty portfolio with the given starting capital and policy.
func NewPortfolio(initialCapital float64, policy RiskPolicy) *Portfolio {
	now := time.Now().Format("2006-01-02 15:04:05")
	return &Portfolio{
		InitialCapital: initialCapital,
		AvailableCash:  initialCapital,
		RiskPolicy:     policy,
		Positions:      make(map[string]*Position),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a deep copy of the portfolio. Evaluation runs operate on
// independent snapshots so concurrent runs never share mutable state.
func (p *Portfolio) Clone() *Portfolio {
	out := *p
	out.Positions = make(map[string]*Position, len(p.Positions))
	for code, pos := range p.Positions {
		cp := *pos
		out.Positions[code] = &cp
	}
	return &out
}

// TradeAction labels a journal entry.
type TradeAction string

const (
	TradeActionBuy    TradeAction = "buy"
	TradeActionAdd    TradeAction = "add"
	TradeActionSell   TradeAction = "sell"
	TradeActionReduce TradeAction = "reduce"
)

// IsBuy reports whether the action opens or increases a position.
func (a TradeAction) IsBuy() bool {
	return a == TradeActionBuy || a == TradeActionAdd
}

// IsSell reports whether the action decreases or closes a position.
func (a TradeAction) IsSell() bool {
	return a == TradeActionSell || a == TradeActionReduce
}

// Trade is one settled journal entry.
type Trade struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Action     TradeAction `json:"action"`
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	Shares     int64       `json:"shares"`
	Price      float64     `json:"price"`
	Gross      float64     `json:"amount"`
	Commission float64     `json:"commission"`
	StampDuty  float64     `json:"stamp_duty,omitempty"`
	Net        float64     `json:"net_amount"`
	Reason     string      `json:"reason,omitempty"`
}

// DailySnapshot records end-of-day account figures for return tracking.
type DailySnapshot struct {
	Date           string  `json:"date"`
	TotalAssets    float64 `json:"total_assets"`
	DailyPnL       float64 `json:"daily_profit_loss"`
	DailyReturnPct float64 `json:"daily_return_pct"`
	TotalReturnPct float64 `json:"total_return_pct"`
}
