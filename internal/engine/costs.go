package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simfolio/simfolio/internal/models"
)

// Side distinguishes buy and sell settlement.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TradeCosts holds the monetary breakdown of one trade, each figure rounded
// half-up to 2 decimal places. Net is computed from the unrounded terms and
// rounded once at the end, so the breakdown fields may differ from
// Gross±Commission±StampDuty by at most a cent.
type TradeCosts struct {
	Gross      float64
	Commission float64
	StampDuty  float64
	Net        float64 // total cost for buys, proceeds for sells
}

// Costs computes commission and stamp duty for a trade under the given
// policy. Commission applies to both sides with a minimum floor; stamp duty
// applies to sells only.
func Costs(policy models.RiskPolicy, side Side, price float64, shares int64) (TradeCosts, error) {
	if price <= 0 {
		return TradeCosts{}, fmt.Errorf("%w: price must be positive, got %v", ErrInvalidInput, price)
	}
	if shares <= 0 {
		return TradeCosts{}, fmt.Errorf("%w: shares must be positive, got %d", ErrInvalidInput, shares)
	}

	gross := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(shares))

	commission := gross.Mul(decimal.NewFromFloat(policy.CommissionRate))
	minCommission := decimal.NewFromFloat(policy.MinCommission)
	if commission.LessThan(minCommission) {
		commission = minCommission
	}

	var stampDuty, net decimal.Decimal
	switch side {
	case SideBuy:
		net = gross.Add(commission)
	case SideSell:
		stampDuty = gross.Mul(decimal.NewFromFloat(policy.StampDutyRate))
		net = gross.Sub(commission).Sub(stampDuty)
	default:
		return TradeCosts{}, fmt.Errorf("%w: unknown side %q", ErrInvalidInput, side)
	}

	return TradeCosts{
		Gross:      roundMoney(gross),
		Commission: roundMoney(commission),
		StampDuty:  roundMoney(stampDuty),
		Net:        roundMoney(net),
	}, nil
}

// NetCost returns the net effective cost (buy) or proceeds (sell) of a trade.
func NetCost(policy models.RiskPolicy, side Side, price float64, shares int64) (float64, error) {
	costs, err := Costs(policy, side, price, shares)
	if err != nil {
		return 0, err
	}
	return costs.Net, nil
}

// roundMoney rounds half-up to 2 decimal places.
func roundMoney(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
