package models

import "time"

// StockAnalysis is an externally produced per-stock analysis result, passed
// through to the advice payload unmodified.
type StockAnalysis struct {
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	Advice         string             `json:"advice"` // e.g. "buy", "hold", "reduce"
	SentimentScore float64            `json:"sentiment_score"`
	Trend          string             `json:"trend,omitempty"`
	Summary        string             `json:"summary,omitempty"`
	TargetPrices   map[string]float64 `json:"target_prices,omitempty"`
}

// AdvicePayload is the structured input handed to the external narrative
// advice generator. Pure assembly of a snapshot, its alerts, and the
// caller-supplied analyses; no computation.
type AdvicePayload struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Policy      RiskPolicy                `json:"risk_policy"`
	Snapshot    *EvaluationSnapshot       `json:"snapshot"`
	Analyses    map[string]*StockAnalysis `json:"analyses,omitempty"`
}

// OperationAdvice is the advisor's output: narrative text plus how it was produced.
type OperationAdvice struct {
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"` // "ai" or "rules"
	Markdown    string    `json:"markdown"`
}
