package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioJSONStaysFlat(t *testing.T) {
	p := NewPortfolio(100000, RiskPolicy{
		StopLossPct:   8,
		TakeProfitPct: 20,
		MinCommission: 5,
	})

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	// Policy fields sit at the top level, not under a nested object.
	assert.Contains(t, raw, "stop_loss_pct")
	assert.Contains(t, raw, "take_profit_pct")
	assert.Contains(t, raw, "initial_capital")
	assert.NotContains(t, raw, "RiskPolicy")
	assert.NotContains(t, raw, "risk_policy")
}

func TestPortfolioClone(t *testing.T) {
	p := NewPortfolio(100000, RiskPolicy{StopLossPct: 8})
	p.Positions["600519"] = &Position{Code: "600519", Shares: 100, CostPrice: 100}

	clone := p.Clone()
	clone.AvailableCash = 1
	clone.Positions["600519"].Shares = 999
	clone.Positions["000001"] = &Position{Code: "000001"}

	assert.Equal(t, 100000.0, p.AvailableCash)
	assert.Equal(t, int64(100), p.Positions["600519"].Shares)
	assert.Len(t, p.Positions, 1)
}

func TestTradeActionSides(t *testing.T) {
	assert.True(t, TradeActionBuy.IsBuy())
	assert.True(t, TradeActionAdd.IsBuy())
	assert.True(t, TradeActionSell.IsSell())
	assert.True(t, TradeActionReduce.IsSell())
	assert.False(t, TradeActionBuy.IsSell())
	assert.False(t, TradeActionReduce.IsBuy())
}

func TestPositionHelpers(t *testing.T) {
	pos := &Position{Code: "600519", Shares: 200, CostPrice: 180}
	assert.False(t, pos.Priced())
	assert.Equal(t, 36000.0, pos.CostAmount())
	assert.Equal(t, 0.0, pos.MarketValue())

	pos.CurrentPrice = 185
	assert.True(t, pos.Priced())
	assert.Equal(t, 37000.0, pos.MarketValue())
}
