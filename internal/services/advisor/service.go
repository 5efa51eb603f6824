// Package advisor turns evaluation snapshots plus external analyses into
// operation advice, via the AI client when available and a rule engine
// otherwise.
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simfolio/simfolio/internal/common"
	"github.com/simfolio/simfolio/internal/engine"
	"github.com/simfolio/simfolio/internal/interfaces"
	"github.com/simfolio/simfolio/internal/models"
)

const disclaimer = "This advice is generated for a simulated portfolio and is not investment advice. All figures are paper-trading results."

// Service implements AdvisorService
type Service struct {
	client interfaces.AdviceClient
	config *common.Config
	logger *common.Logger
}

// NewService creates a new advisor service. A nil client routes every
// request to the rule engine.
func NewService(client interfaces.AdviceClient, config *common.Config, logger *common.Logger) *Service {
	return &Service{
		client: client,
		config: config,
		logger: logger,
	}
}

// BuildPayload assembles the advice request payload from a snapshot and the
// caller-supplied analyses.
func (s *Service) BuildPayload(ctx context.Context, snapshot *models.EvaluationSnapshot, analyses map[string]*models.StockAnalysis) (*models.AdvicePayload, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("%w: nil snapshot", engine.ErrInvalidInput)
	}

	policy := models.RiskPolicy{
		StopLossPct:          s.config.Risk.StopLossPct,
		TakeProfitPct:        s.config.Risk.TakeProfitPct,
		MaxSinglePositionPct: s.config.Risk.MaxSinglePositionPct,
		MaxTotalPositionPct:  s.config.Risk.MaxTotalPositionPct,
		CommissionRate:       s.config.Risk.CommissionRate,
		StampDutyRate:        s.config.Risk.StampDutyRate,
		MinCommission:        s.config.Risk.MinCommission,
	}

	return engine.BuildRequest(policy, snapshot, analyses, s.config.Advice.RequireAnalysis)
}

// Advise generates operation advice for the payload. The AI path is tried
// first; any failure falls back to the rule engine so a report is always
// produced.
func (s *Service) Advise(ctx context.Context, payload *models.AdvicePayload) (*models.OperationAdvice, error) {
	if payload == nil || payload.Snapshot == nil {
		return nil, fmt.Errorf("%w: nil advice payload", engine.ErrInvalidInput)
	}

	if s.client != nil {
		text, err := s.client.GenerateContent(ctx, s.buildPrompt(payload))
		if err == nil && strings.TrimSpace(text) != "" {
			s.logger.Info().Int("chars", len(text)).Msg("AI advice generated")
			return &models.OperationAdvice{
				GeneratedAt: time.Now(),
				Source:      "ai",
				Markdown:    s.wrap(text),
			}, nil
		}
		s.logger.Warn().Err(err).Msg("AI advice unavailable, falling back to rule engine")
	}

	return &models.OperationAdvice{
		GeneratedAt: time.Now(),
		Source:      "rules",
		Markdown:    s.wrap(s.ruleAdvice(payload)),
	}, nil
}

// buildPrompt renders the payload as a structured prompt for the model.
func (s *Service) buildPrompt(payload *models.AdvicePayload) string {
	snap := payload.Snapshot
	var sb strings.Builder

	sb.WriteString("You are a portfolio operations assistant for a simulated stock portfolio.\n")
	sb.WriteString("Based on the account state, risk alerts, and per-stock analyses below, produce concrete operation advice in markdown.\n")
	sb.WriteString("For each held position state whether to hold, add, reduce, or exit, and explain briefly.\n\n")

	sb.WriteString("## Account\n")
	fmt.Fprintf(&sb, "- Total equity: %s (initial capital %s)\n", common.FormatMoney(snap.TotalEquity), common.FormatMoney(snap.InitialCapital))
	fmt.Fprintf(&sb, "- Available cash: %s (%s of equity)\n", common.FormatMoney(snap.AvailableCash), common.FormatPct(snap.CashPct))
	fmt.Fprintf(&sb, "- Market value: %s across %d positions (exposure %s)\n", common.FormatMoney(snap.TotalMarketValue), snap.PositionCount, common.FormatPct(snap.ExposurePct))
	fmt.Fprintf(&sb, "- Unrealized P&L: %s (%s), total return %s\n\n", common.FormatSignedMoney(snap.TotalPnL), common.FormatSignedPct(snap.TotalPnLPct), common.FormatSignedPct(snap.TotalReturnPct))

	sb.WriteString("## Risk policy\n")
	fmt.Fprintf(&sb, "- Stop loss at -%.1f%%, take profit at +%.1f%%\n", payload.Policy.StopLossPct, payload.Policy.TakeProfitPct)
	fmt.Fprintf(&sb, "- Max %.0f%% of equity per position, %.0f%% total exposure\n\n", payload.Policy.MaxSinglePositionPct, payload.Policy.MaxTotalPositionPct)

	sb.WriteString("## Positions\n")
	for i := range snap.Positions {
		p := &snap.Positions[i]
		if !p.Priced() {
			fmt.Fprintf(&sb, "- %s %s: %d shares at cost %.2f, no current price\n", p.Code, p.Name, p.Shares, p.CostPrice)
			continue
		}
		fmt.Fprintf(&sb, "- %s %s: %d shares, cost %.2f, now %.2f, P&L %s, weight %s\n",
			p.Code, p.Name, p.Shares, p.CostPrice, *p.CurrentPrice, common.FormatSignedPct(*p.PnLPct), common.FormatPct(*p.WeightPct))
	}
	sb.WriteString("\n")

	if len(snap.Alerts) > 0 {
		sb.WriteString("## Risk alerts\n")
		for _, a := range snap.Alerts {
			fmt.Fprintf(&sb, "- [%s] %s\n", strings.ToUpper(string(a.Severity)), a.Message)
		}
		sb.WriteString("\n")
	}

	if len(payload.Analyses) > 0 {
		sb.WriteString("## Stock analyses\n")
		for i := range snap.Positions {
			a, ok := payload.Analyses[snap.Positions[i].Code]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "- %s %s: advice %s, sentiment %.2f", a.Code, a.Name, a.Advice, a.SentimentScore)
			if a.Trend != "" {
				fmt.Fprintf(&sb, ", trend %s", a.Trend)
			}
			if a.Summary != "" {
				fmt.Fprintf(&sb, ". %s", a.Summary)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// ruleAdvice produces deterministic advice from the alert sequence and any
// supplied analyses.
func (s *Service) ruleAdvice(payload *models.AdvicePayload) string {
	snap := payload.Snapshot
	var sb strings.Builder

	sb.WriteString("## Operation Advice\n\n")

	if len(snap.Alerts) == 0 {
		sb.WriteString("No risk rules are triggered. Hold current positions and monitor daily.\n")
	} else {
		for _, a := range snap.Alerts {
			switch a.Kind {
			case models.AlertStopLossTriggered:
				fmt.Fprintf(&sb, "- **%s %s**: loss of %s has breached the stop-loss line. Exit or reduce the position promptly.\n",
					a.Subject, a.Name, common.FormatSignedPct(a.Trigger))
			case models.AlertStopLossApproaching:
				fmt.Fprintf(&sb, "- **%s %s**: loss of %s is approaching the stop-loss line. Set an exit order and avoid adding.\n",
					a.Subject, a.Name, common.FormatSignedPct(a.Trigger))
			case models.AlertTakeProfitTriggered:
				fmt.Fprintf(&sb, "- **%s %s**: gain of %s has reached the take-profit target. Consider locking in at least part of the profit.\n",
					a.Subject, a.Name, common.FormatSignedPct(a.Trigger))
			case models.AlertTakeProfitApproaching:
				fmt.Fprintf(&sb, "- **%s %s**: gain of %s is near the take-profit target. Tighten the trailing stop.\n",
					a.Subject, a.Name, common.FormatSignedPct(a.Trigger))
			case models.AlertExposureExceeded:
				if a.Subject == models.AggregateSubject {
					fmt.Fprintf(&sb, "- **Portfolio**: total exposure %s exceeds the limit. Do not open new positions until exposure falls.\n",
						common.FormatPct(a.Trigger))
				} else {
					fmt.Fprintf(&sb, "- **%s %s**: position weight %s exceeds the single-position limit. Trim the position.\n",
						a.Subject, a.Name, common.FormatPct(a.Trigger))
				}
			}
		}
	}

	if suggestions := s.analysisSuggestions(payload); suggestions != "" {
		sb.WriteString("\n### From stock analyses\n\n")
		sb.WriteString(suggestions)
	}

	if snap.CashPct > 50 && len(snap.Alerts) == 0 {
		fmt.Fprintf(&sb, "\nCash stands at %s of equity. Idle cash can be deployed gradually when candidates appear.\n",
			common.FormatPct(snap.CashPct))
	}

	return sb.String()
}

func (s *Service) analysisSuggestions(payload *models.AdvicePayload) string {
	if len(payload.Analyses) == 0 {
		return ""
	}

	var sb strings.Builder
	for i := range payload.Snapshot.Positions {
		code := payload.Snapshot.Positions[i].Code
		a, ok := payload.Analyses[code]
		if !ok {
			continue
		}
		switch {
		case a.SentimentScore <= -0.3 || strings.EqualFold(a.Advice, "sell") || strings.EqualFold(a.Advice, "reduce"):
			fmt.Fprintf(&sb, "- %s %s: analysis advises %q (sentiment %.2f). Consider reducing.\n", a.Code, a.Name, a.Advice, a.SentimentScore)
		case a.SentimentScore >= 0.3 || strings.EqualFold(a.Advice, "buy") || strings.EqualFold(a.Advice, "add"):
			fmt.Fprintf(&sb, "- %s %s: analysis advises %q (sentiment %.2f). Adding within position limits is supportable.\n", a.Code, a.Name, a.Advice, a.SentimentScore)
		default:
			fmt.Fprintf(&sb, "- %s %s: analysis is neutral. Hold.\n", a.Code, a.Name)
		}
	}
	return sb.String()
}

// wrap appends the generation timestamp and the standing disclaimer.
func (s *Service) wrap(text string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(text, "\n"))
	sb.WriteString("\n\n---\n\n")
	fmt.Fprintf(&sb, "*Generated at %s*\n\n", time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("> ")
	sb.WriteString(disclaimer)
	sb.WriteString("\n")
	return sb.String()
}

// QuickSummary renders a one-screen console digest of a snapshot.
func (s *Service) QuickSummary(snapshot *models.EvaluationSnapshot) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Equity %s | Cash %s (%s) | Exposure %s | P&L %s (%s)\n",
		common.FormatMoney(snapshot.TotalEquity),
		common.FormatMoney(snapshot.AvailableCash),
		common.FormatPct(snapshot.CashPct),
		common.FormatPct(snapshot.ExposurePct),
		common.FormatSignedMoney(snapshot.TotalPnL),
		common.FormatSignedPct(snapshot.TotalPnLPct))

	for i := range snapshot.Positions {
		p := &snapshot.Positions[i]
		if !p.Priced() {
			fmt.Fprintf(&sb, "  %-8s %-12s %6d @ %.2f  (no price)\n", p.Code, p.Name, p.Shares, p.CostPrice)
			continue
		}
		fmt.Fprintf(&sb, "  %-8s %-12s %6d @ %.2f -> %.2f  %s\n",
			p.Code, p.Name, p.Shares, p.CostPrice, *p.CurrentPrice, common.FormatSignedPct(*p.PnLPct))
	}

	if len(snapshot.Alerts) > 0 {
		fmt.Fprintf(&sb, "Alerts: %d\n", len(snapshot.Alerts))
		for _, a := range snapshot.Alerts {
			fmt.Fprintf(&sb, "  [%s] %s\n", strings.ToUpper(string(a.Severity)), a.Message)
		}
	}

	return sb.String()
}
