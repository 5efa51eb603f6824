package engine

import (
	"fmt"
	"sort"

	"github.com/simfolio/simfolio/internal/models"
)

// Threshold factors for "approaching" alerts: a loss past 70% of the
// stop-loss line or a gain past 80% of the take-profit line is flagged
// before the hard threshold trips.
const (
	stopLossApproachFactor   = 0.70
	takeProfitApproachFactor = 0.80
)

// Classify applies the risk rule table to each priced position and to the
// aggregate exposure, returning alerts ordered by severity (critical first)
// and, within equal severity, by deviation past the threshold, worst first.
//
// Each position emits at most one stop-loss-class and one take-profit-class
// alert per run; the triggered variant wins over approaching. Unpriced
// positions are skipped. Alerts are recomputed fresh every run.
func Classify(policy models.RiskPolicy, snapshot *models.EvaluationSnapshot) []models.RiskAlert {
	alerts := make([]models.RiskAlert, 0)

	for i := range snapshot.Positions {
		v := &snapshot.Positions[i]
		if !v.Priced() {
			continue
		}
		pct := *v.PnLPct

		// Stop-loss category: triggered short-circuits approaching.
		switch {
		case pct <= -policy.StopLossPct:
			alerts = append(alerts, models.RiskAlert{
				Subject:   v.Code,
				Name:      v.Name,
				Kind:      models.AlertStopLossTriggered,
				Severity:  models.SeverityCritical,
				Trigger:   pct,
				Deviation: -policy.StopLossPct - pct,
				Message:   fmt.Sprintf("%s(%s) has hit the stop-loss line, down %.2f%%", v.Name, v.Code, pct),
				Action:    "sell to stop the loss",
			})
		case pct <= -policy.StopLossPct*stopLossApproachFactor:
			alerts = append(alerts, models.RiskAlert{
				Subject:   v.Code,
				Name:      v.Name,
				Kind:      models.AlertStopLossApproaching,
				Severity:  models.SeverityWarning,
				Trigger:   pct,
				Deviation: -policy.StopLossPct*stopLossApproachFactor - pct,
				Message:   fmt.Sprintf("%s(%s) is approaching the stop-loss line, down %.2f%%", v.Name, v.Code, pct),
				Action:    "watch closely, prepare to cut",
			})
		}

		// Take-profit category.
		switch {
		case pct >= policy.TakeProfitPct:
			alerts = append(alerts, models.RiskAlert{
				Subject:   v.Code,
				Name:      v.Name,
				Kind:      models.AlertTakeProfitTriggered,
				Severity:  models.SeverityInfo,
				Trigger:   pct,
				Deviation: pct - policy.TakeProfitPct,
				Message:   fmt.Sprintf("%s(%s) has reached the take-profit target, up %.2f%%", v.Name, v.Code, pct),
				Action:    "take profit in batches",
			})
		case pct >= policy.TakeProfitPct*takeProfitApproachFactor:
			alerts = append(alerts, models.RiskAlert{
				Subject:   v.Code,
				Name:      v.Name,
				Kind:      models.AlertTakeProfitApproaching,
				Severity:  models.SeverityInfo,
				Trigger:   pct,
				Deviation: pct - policy.TakeProfitPct*takeProfitApproachFactor,
				Message:   fmt.Sprintf("%s(%s) is approaching the take-profit target, up %.2f%%", v.Name, v.Code, pct),
				Action:    "consider partial profit-taking",
			})
		}

		// Single-position limit, advisory.
		if v.WeightPct != nil && *v.WeightPct > policy.MaxSinglePositionPct {
			alerts = append(alerts, models.RiskAlert{
				Subject:   v.Code,
				Name:      v.Name,
				Kind:      models.AlertExposureExceeded,
				Severity:  models.SeverityWarning,
				Trigger:   *v.WeightPct,
				Deviation: *v.WeightPct - policy.MaxSinglePositionPct,
				Message:   fmt.Sprintf("%s(%s) weight %.1f%% exceeds the single-position limit %.1f%%", v.Name, v.Code, *v.WeightPct, policy.MaxSinglePositionPct),
				Action:    "avoid adding to this position",
			})
		}
	}

	// Aggregate exposure, closed bound.
	if snapshot.ExposurePct >= policy.MaxTotalPositionPct {
		alerts = append(alerts, models.RiskAlert{
			Subject:   models.AggregateSubject,
			Name:      "total exposure",
			Kind:      models.AlertExposureExceeded,
			Severity:  models.SeverityWarning,
			Trigger:   snapshot.ExposurePct,
			Deviation: snapshot.ExposurePct - policy.MaxTotalPositionPct,
			Message:   fmt.Sprintf("total exposure %.1f%% has reached the limit %.1f%%", snapshot.ExposurePct, policy.MaxTotalPositionPct),
			Action:    "do not add exposure",
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity.Rank() != alerts[j].Severity.Rank() {
			return alerts[i].Severity.Rank() < alerts[j].Severity.Rank()
		}
		if alerts[i].Deviation != alerts[j].Deviation {
			return alerts[i].Deviation > alerts[j].Deviation
		}
		return alerts[i].Subject < alerts[j].Subject
	})

	return alerts
}
