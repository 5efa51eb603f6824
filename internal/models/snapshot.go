package models

import "time"

// AlertKind categorizes risk alerts
type AlertKind string

const (
	AlertStopLossTriggered     AlertKind = "stop_loss_triggered"
	AlertStopLossApproaching   AlertKind = "stop_loss_approaching"
	AlertTakeProfitTriggered   AlertKind = "take_profit_triggered"
	AlertTakeProfitApproaching AlertKind = "take_profit_approaching"
	AlertExposureExceeded      AlertKind = "exposure_exceeded"
)

// AlertSeverity orders alerts: critical > warning > info.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

// Rank returns the sort rank of the severity, lower is more severe.
func (s AlertSeverity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// AggregateSubject is the alert subject used for portfolio-level alerts.
const AggregateSubject = "portfolio"

// RiskAlert is a derived, ephemeral finding. Alerts are recomputed fresh on
// every evaluation run; none persist.
type RiskAlert struct {
	Subject   string        `json:"subject"` // position code or AggregateSubject
	Name      string        `json:"name,omitempty"`
	Kind      AlertKind     `json:"kind"`
	Severity  AlertSeverity `json:"severity"`
	Trigger   float64       `json:"trigger"`   // the value that tripped the rule
	Deviation float64       `json:"deviation"` // distance past the threshold
	Message   string        `json:"message"`
	Action    string        `json:"action,omitempty"`
}

// PositionValuation holds the computed figures for one position. The pointer
// fields are nil when no current price is available: an unpriced position is
// reported as unavailable, not zero, and excluded from percentage risk checks.
type PositionValuation struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Shares       int64    `json:"shares"`
	CostPrice    float64  `json:"cost_price"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	MarketValue  *float64 `json:"market_value,omitempty"`
	PnL          *float64 `json:"profit_loss,omitempty"`
	PnLPct       *float64 `json:"profit_loss_pct,omitempty"`
	WeightPct    *float64 `json:"weight_pct,omitempty"`
}

// Priced reports whether the valuation carries market figures.
func (v *PositionValuation) Priced() bool {
	return v.MarketValue != nil
}

// EvaluationSnapshot is the engine's sole output artifact: per-position
// figures, aggregate account figures, and the ordered alert sequence.
type EvaluationSnapshot struct {
	GeneratedAt      time.Time           `json:"generated_at"`
	InitialCapital   float64             `json:"initial_capital"`
	AvailableCash    float64             `json:"available_cash"`
	TotalMarketValue float64             `json:"total_market_value"`
	TotalEquity      float64             `json:"total_equity"`
	TotalCost        float64             `json:"total_cost"`
	TotalPnL         float64             `json:"total_profit_loss"`
	TotalPnLPct      float64             `json:"total_profit_loss_pct"`
	TotalReturnPct   float64             `json:"total_return_pct"` // vs initial capital
	ExposurePct      float64             `json:"exposure_pct"`
	CashPct          float64             `json:"cash_pct"`
	PositionCount    int                 `json:"position_count"`
	Positions        []PositionValuation `json:"positions"`
	Alerts           []RiskAlert         `json:"alerts"`
}

// Valuation returns the valuation for a code, or nil.
func (s *EvaluationSnapshot) Valuation(code string) *PositionValuation {
	for i := range s.Positions {
		if s.Positions[i].Code == code {
			return &s.Positions[i]
		}
	}
	return nil
}
