package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfolio/simfolio/internal/models"
)

func testPolicy() models.RiskPolicy {
	return models.RiskPolicy{
		StopLossPct:          8,
		TakeProfitPct:        20,
		MaxSinglePositionPct: 30,
		MaxTotalPositionPct:  80,
		CommissionRate:       0.0003,
		StampDutyRate:        0.001,
		MinCommission:        5,
	}
}

func TestCostsBuy(t *testing.T) {
	costs, err := Costs(testPolicy(), SideBuy, 10.0, 10000)
	require.NoError(t, err)

	// gross 100000, commission 30 (above the 5 floor), no stamp duty on buys
	assert.Equal(t, 100000.0, costs.Gross)
	assert.Equal(t, 30.0, costs.Commission)
	assert.Equal(t, 0.0, costs.StampDuty)
	assert.Equal(t, 100030.0, costs.Net)
}

func TestCostsSell(t *testing.T) {
	costs, err := Costs(testPolicy(), SideSell, 10.0, 10000)
	require.NoError(t, err)

	// gross 100000, commission 30, stamp duty 100
	assert.Equal(t, 100000.0, costs.Gross)
	assert.Equal(t, 30.0, costs.Commission)
	assert.Equal(t, 100.0, costs.StampDuty)
	assert.Equal(t, 99870.0, costs.Net)
}

func TestCostsMinCommissionFloor(t *testing.T) {
	// gross 1000 × 0.0003 = 0.30, floored to 5
	costs, err := Costs(testPolicy(), SideBuy, 1.0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 5.0, costs.Commission)
	assert.Equal(t, 1005.0, costs.Net)
}

func TestCostsRoundHalfUp(t *testing.T) {
	// gross 3.335 × 3 = 10.005 rounds to 10.01; net 15.005 rounds to 15.01
	costs, err := Costs(testPolicy(), SideBuy, 3.335, 3)
	require.NoError(t, err)
	assert.Equal(t, 10.01, costs.Gross)
	assert.Equal(t, 15.01, costs.Net)
}

func TestCostsInvalidInput(t *testing.T) {
	_, err := Costs(testPolicy(), SideBuy, 0, 100)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Costs(testPolicy(), SideBuy, -10, 100)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Costs(testPolicy(), SideSell, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Costs(testPolicy(), SideSell, 10, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Costs(testPolicy(), Side("short"), 10, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// Buy costs are always additive, sell costs always reduce proceeds.
func TestCostsBounds(t *testing.T) {
	policy := testPolicy()
	cases := []struct {
		price  float64
		shares int64
	}{
		{0.01, 1},
		{1.55, 1000},
		{1800, 100},
		{9999.99, 7},
	}

	for _, tc := range cases {
		gross := tc.price * float64(tc.shares)

		buy, err := NetCost(policy, SideBuy, tc.price, tc.shares)
		require.NoError(t, err)
		assert.Greater(t, buy, gross, "buy net must exceed gross")

		sell, err := NetCost(policy, SideSell, tc.price, tc.shares)
		require.NoError(t, err)
		assert.Less(t, sell, gross, "sell net must be below gross")
	}
}
