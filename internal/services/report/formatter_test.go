package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simfolio/simfolio/internal/models"
)

func TestFormatDailyReport(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Alerts = []models.RiskAlert{
		{
			Subject: "600519", Name: "Kweichow Moutai",
			Kind: models.AlertStopLossApproaching, Severity: models.SeverityWarning,
			Trigger: -6.2, Message: "600519 down 6.20%, approaching the 8.0% stop loss",
			Action: "Review the position before the next session.",
		},
	}

	out := formatDailyReport(snapshot, nil, "")

	assert.Contains(t, out, "## Account Overview")
	assert.Contains(t, out, "| Total Equity | ¥101,000.00 |")
	assert.Contains(t, out, "| 600519 | Kweichow Moutai | 100 |")
	assert.Contains(t, out, "**[WARNING]** 600519 down 6.20%")
	assert.Contains(t, out, "Review the position before the next session.")
	assert.Contains(t, out, "simulated portfolio")
	assert.NotContains(t, out, "Position Weights", "no chart section without a chart key")
}

func TestFormatDailyReportSortsByPnL(t *testing.T) {
	snapshot := testSnapshot()
	*snapshot.Positions[1].PnLPct = 10.0

	out := formatDailyReport(snapshot, nil, "")

	midea := strings.Index(out, "| 000333 |")
	moutai := strings.Index(out, "| 600519 |")
	assert.Less(t, midea, moutai, "best performer listed first")
}

func TestFormatDailyReportUnpricedPosition(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Positions = append(snapshot.Positions, models.PositionValuation{
		Code: "300750", Name: "CATL", Shares: 50, CostPrice: 200.0,
	})

	out := formatDailyReport(snapshot, nil, "")
	assert.Contains(t, out, "| 300750 | CATL | 50 | ¥200.00 | - | - | - | - | - |")

	lines := strings.Split(out, "\n")
	var last string
	for _, line := range lines {
		if strings.HasPrefix(line, "| 6") || strings.HasPrefix(line, "| 0") || strings.HasPrefix(line, "| 3") {
			last = line
		}
	}
	assert.Contains(t, last, "300750", "unpriced positions trail the table")
}

func TestFormatDailyReportEmptyPortfolio(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Positions = nil
	snapshot.PositionCount = 0

	out := formatDailyReport(snapshot, nil, "")
	assert.Contains(t, out, "No positions held.")
	assert.Contains(t, out, "No risk rules triggered.")
}

func TestFormatDailyReportIncludesAdvice(t *testing.T) {
	advice := &models.OperationAdvice{Source: "ai", Markdown: "## Operation Advice\n\nTrim 600519.\n"}

	out := formatDailyReport(testSnapshot(), advice, "")
	assert.Contains(t, out, "Trim 600519.")
}
