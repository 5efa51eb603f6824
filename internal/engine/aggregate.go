package engine

import (
	"sort"
	"time"

	"github.com/simfolio/simfolio/internal/models"
)

// Aggregate valuates every position and sums the account figures into an
// EvaluationSnapshot (without alerts; see Classify). The prices map, when
// non-nil, overrides stored current prices for this run. The portfolio is
// not mutated.
//
// Positions without a known market value contribute their share count to the
// snapshot but nothing to equity or exposure. A degenerate zero-equity
// portfolio reports all weights as 0.
func Aggregate(p *models.Portfolio, prices map[string]float64) *models.EvaluationSnapshot {
	snapshot := &models.EvaluationSnapshot{
		GeneratedAt:    time.Now(),
		InitialCapital: p.InitialCapital,
		AvailableCash:  p.AvailableCash,
		PositionCount:  len(p.Positions),
	}

	codes := make([]string, 0, len(p.Positions))
	for code := range p.Positions {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	valuations := make([]models.PositionValuation, 0, len(codes))
	for _, code := range codes {
		pos := p.Positions[code]
		price := pos.CurrentPrice
		if prices != nil {
			if override, ok := prices[code]; ok {
				price = override
			}
		}

		v := Valuate(pos, price)
		if v.Priced() {
			snapshot.TotalMarketValue += *v.MarketValue
			snapshot.TotalCost += pos.CostAmount()
		}
		valuations = append(valuations, v)
	}

	snapshot.TotalEquity = p.AvailableCash + snapshot.TotalMarketValue
	snapshot.TotalPnL = snapshot.TotalMarketValue - snapshot.TotalCost
	if snapshot.TotalCost != 0 {
		snapshot.TotalPnLPct = snapshot.TotalPnL / snapshot.TotalCost * 100
	}
	if p.InitialCapital != 0 {
		snapshot.TotalReturnPct = (snapshot.TotalEquity - p.InitialCapital) / p.InitialCapital * 100
	}

	// Per-position weights and total exposure. Zero equity degenerates to
	// zero weights rather than a divide-by-zero.
	for i := range valuations {
		v := &valuations[i]
		if !v.Priced() {
			continue
		}
		weight := 0.0
		if snapshot.TotalEquity != 0 {
			weight = *v.MarketValue / snapshot.TotalEquity * 100
		}
		v.WeightPct = &weight
		snapshot.ExposurePct += weight
	}
	if snapshot.TotalEquity != 0 {
		snapshot.CashPct = p.AvailableCash / snapshot.TotalEquity * 100
	}

	snapshot.Positions = valuations
	return snapshot
}

// Evaluate runs the full engine pass: aggregate figures plus the ordered risk
// alert sequence. Pure function of the portfolio value and price inputs.
func Evaluate(p *models.Portfolio, prices map[string]float64) *models.EvaluationSnapshot {
	snapshot := Aggregate(p, prices)
	snapshot.Alerts = Classify(p.RiskPolicy, snapshot)
	return snapshot
}
