package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/models"
)

const disclaimer = "This report covers a simulated portfolio. Nothing here is investment advice."

// formatDailyReport renders the full daily report markdown from a snapshot,
// the optional operation advice, and the optional chart reference.
func formatDailyReport(snapshot *models.EvaluationSnapshot, advice *models.OperationAdvice, chartKey string) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Daily Portfolio Report: %s\n\n", snapshot.GeneratedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", snapshot.GeneratedAt.Format("2006-01-02 15:04")))

	// Account overview
	sb.WriteString("## Account Overview\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Equity | %s |\n", common.FormatMoney(snapshot.TotalEquity)))
	sb.WriteString(fmt.Sprintf("| Initial Capital | %s |\n", common.FormatMoney(snapshot.InitialCapital)))
	sb.WriteString(fmt.Sprintf("| Available Cash | %s (%s) |\n", common.FormatMoney(snapshot.AvailableCash), common.FormatPct(snapshot.CashPct)))
	sb.WriteString(fmt.Sprintf("| Market Value | %s (%s exposure) |\n", common.FormatMoney(snapshot.TotalMarketValue), common.FormatPct(snapshot.ExposurePct)))
	sb.WriteString(fmt.Sprintf("| Unrealized P&L | %s (%s) |\n", common.FormatSignedMoney(snapshot.TotalPnL), common.FormatSignedPct(snapshot.TotalPnLPct)))
	sb.WriteString(fmt.Sprintf("| Total Return | %s |\n\n", common.FormatSignedPct(snapshot.TotalReturnPct)))

	// Holdings table, best performers first. Unpriced positions trail.
	sb.WriteString("## Holdings\n\n")
	if len(snapshot.Positions) == 0 {
		sb.WriteString("No positions held.\n\n")
	} else {
		positions := make([]models.PositionValuation, len(snapshot.Positions))
		copy(positions, snapshot.Positions)
		sort.SliceStable(positions, func(i, j int) bool {
			pi, pj := positions[i].Priced(), positions[j].Priced()
			if pi != pj {
				return pi
			}
			if !pi {
				return positions[i].Code < positions[j].Code
			}
			return *positions[i].PnLPct > *positions[j].PnLPct
		})

		sb.WriteString("| Code | Name | Shares | Cost | Price | Value | P&L | P&L % | Weight |\n")
		sb.WriteString("|------|------|--------|------|-------|-------|-----|-------|--------|\n")
		for i := range positions {
			p := &positions[i]
			if !p.Priced() {
				sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | - | - | - | - | - |\n",
					p.Code, p.Name, p.Shares, common.FormatMoney(p.CostPrice)))
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s | %s | %s | %s |\n",
				p.Code, p.Name, p.Shares,
				common.FormatMoney(p.CostPrice), common.FormatMoney(*p.CurrentPrice),
				common.FormatMoney(*p.MarketValue),
				common.FormatSignedMoney(*p.PnL), common.FormatSignedPct(*p.PnLPct),
				common.FormatPct(*p.WeightPct)))
		}
		sb.WriteString("\n")
	}

	// Risk alerts
	sb.WriteString("## Risk Alerts\n\n")
	if len(snapshot.Alerts) == 0 {
		sb.WriteString("No risk rules triggered.\n\n")
	} else {
		for _, a := range snapshot.Alerts {
			sb.WriteString(fmt.Sprintf("- **[%s]** %s", strings.ToUpper(string(a.Severity)), a.Message))
			if a.Action != "" {
				sb.WriteString(fmt.Sprintf(" %s", a.Action))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if chartKey != "" {
		sb.WriteString("## Position Weights\n\n")
		sb.WriteString(fmt.Sprintf("![Position weights](%s)\n\n", chartKey))
	}

	if advice != nil {
		sb.WriteString(advice.Markdown)
		if !strings.HasSuffix(advice.Markdown, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("> %s\n", disclaimer))

	return sb.String()
}
