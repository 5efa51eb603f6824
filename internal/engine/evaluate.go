package engine

import (
	"github.com/simfolio/simfolio/internal/models"
)

// Valuate computes the market figures for one position at the given current
// price. A non-positive price means no price is available: the market fields
// are left nil so downstream reporting shows them as unavailable rather than
// zero, and the position is excluded from percentage-based risk checks.
//
// Unrealized P&L ignores trading costs already paid at entry; those were
// absorbed into cash at buy time, not into the cost basis.
func Valuate(pos *models.Position, currentPrice float64) models.PositionValuation {
	v := models.PositionValuation{
		Code:      pos.Code,
		Name:      pos.Name,
		Shares:    pos.Shares,
		CostPrice: pos.CostPrice,
	}

	if currentPrice <= 0 {
		return v
	}

	marketValue := currentPrice * float64(pos.Shares)
	costTotal := pos.CostPrice * float64(pos.Shares)
	pnl := marketValue - costTotal

	// Zero cost basis cannot occur for a held position, but the division is
	// guarded: P&L percent reports 0 instead of propagating a NaN.
	pnlPct := 0.0
	if costTotal != 0 {
		pnlPct = pnl / costTotal * 100
	}

	v.CurrentPrice = &currentPrice
	v.MarketValue = &marketValue
	v.PnL = &pnl
	v.PnLPct = &pnlPct
	return v
}
