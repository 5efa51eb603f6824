package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simfolio/simfolio/internal/models"
)

func TestRenderWeightsChart(t *testing.T) {
	png, err := renderWeightsChart(testSnapshot())
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestRenderWeightsChartNoPricedPositions(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Positions = []models.PositionValuation{
		{Code: "300750", Name: "CATL", Shares: 50, CostPrice: 200.0},
	}

	_, err := renderWeightsChart(snapshot)
	assert.Error(t, err)
}
