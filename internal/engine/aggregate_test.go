package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfolio/simfolio/internal/models"
)

func testPortfolio(cash float64, positions ...*models.Position) *models.Portfolio {
	p := models.NewPortfolio(cash, testPolicy())
	for _, pos := range positions {
		p.Positions[pos.Code] = pos
	}
	return p
}

func TestAggregateTotals(t *testing.T) {
	p := testPortfolio(100000,
		&models.Position{Code: "515080", Name: "Dividend ETF", Shares: 10000, CostPrice: 1.50, CurrentPrice: 1.65},
		&models.Position{Code: "159707", Name: "PV ETF", Shares: 5000, CostPrice: 0.70, CurrentPrice: 0.63},
	)
	p.AvailableCash = 80000

	s := Aggregate(p, nil)

	// 10000×1.65 + 5000×0.63 = 16500 + 3150 = 19650
	assert.Equal(t, 19650.0, s.TotalMarketValue)
	assert.Equal(t, 99650.0, s.TotalEquity)
	// cost 15000 + 3500 = 18500
	assert.Equal(t, 18500.0, s.TotalCost)
	assert.Equal(t, 1150.0, s.TotalPnL)
	assert.Equal(t, 2, s.PositionCount)
	assert.Len(t, s.Positions, 2)

	// return vs initial capital 100000
	assert.InDelta(t, -0.35, s.TotalReturnPct, 0.01)
}

// Weight sum invariant: Σ weight over priced positions equals total exposure.
func TestAggregateWeightSum(t *testing.T) {
	p := testPortfolio(100000,
		&models.Position{Code: "A", Shares: 100, CostPrice: 10, CurrentPrice: 12},
		&models.Position{Code: "B", Shares: 300, CostPrice: 20, CurrentPrice: 21},
		&models.Position{Code: "C", Shares: 50, CostPrice: 99, CurrentPrice: 101},
	)

	s := Aggregate(p, nil)

	sum := 0.0
	for _, v := range s.Positions {
		require.NotNil(t, v.WeightPct)
		sum += *v.WeightPct
	}
	assert.InDelta(t, s.ExposurePct, sum, 0.01)
	assert.InDelta(t, 100.0, s.ExposurePct+s.CashPct, 0.01)
}

func TestAggregatePriceOverrides(t *testing.T) {
	p := testPortfolio(10000,
		&models.Position{Code: "A", Shares: 100, CostPrice: 10, CurrentPrice: 11},
	)

	s := Aggregate(p, map[string]float64{"A": 12})
	assert.Equal(t, 1200.0, *s.Positions[0].MarketValue)

	// the source portfolio is untouched
	assert.Equal(t, 11.0, p.Positions["A"].CurrentPrice)
}

// A degenerate zero-equity portfolio reports zero weights, no NaN.
func TestAggregateZeroEquity(t *testing.T) {
	p := testPortfolio(0)
	p.InitialCapital = 0

	s := Aggregate(p, nil)
	assert.Equal(t, 0.0, s.TotalEquity)
	assert.Equal(t, 0.0, s.ExposurePct)
	assert.Equal(t, 0.0, s.CashPct)
	assert.Equal(t, 0.0, s.TotalReturnPct)
}

// Unpriced positions keep their share count in the snapshot but contribute
// nothing to equity or exposure.
func TestAggregateUnpricedExcluded(t *testing.T) {
	p := testPortfolio(50000,
		&models.Position{Code: "A", Shares: 100, CostPrice: 10, CurrentPrice: 12},
		&models.Position{Code: "B", Shares: 200, CostPrice: 5}, // no price yet
	)

	s := Aggregate(p, nil)
	assert.Equal(t, 1200.0, s.TotalMarketValue)
	assert.Equal(t, 51200.0, s.TotalEquity)

	b := s.Valuation("B")
	require.NotNil(t, b)
	assert.False(t, b.Priced())
	assert.Equal(t, int64(200), b.Shares)
	assert.Nil(t, b.WeightPct)
}

// Evaluating the same portfolio twice with identical prices yields identical
// figures: the engine is a pure function with no hidden state.
func TestEvaluateIdempotent(t *testing.T) {
	p := testPortfolio(100000,
		&models.Position{Code: "515080", Shares: 10000, CostPrice: 1.50, CurrentPrice: 1.38},
		&models.Position{Code: "600519", Shares: 100, CostPrice: 1800, CurrentPrice: 1850},
	)

	a := Evaluate(p, nil)
	b := Evaluate(p, nil)

	assert.Equal(t, a.TotalEquity, b.TotalEquity)
	assert.Equal(t, a.TotalPnL, b.TotalPnL)
	assert.Equal(t, a.ExposurePct, b.ExposurePct)
	require.Equal(t, len(a.Alerts), len(b.Alerts))
	for i := range a.Alerts {
		assert.Equal(t, a.Alerts[i].Kind, b.Alerts[i].Kind)
		assert.Equal(t, a.Alerts[i].Subject, b.Alerts[i].Subject)
		assert.Equal(t, a.Alerts[i].Trigger, b.Alerts[i].Trigger)
	}
}
