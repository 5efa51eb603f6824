package models

import "time"

// DailyReport is a stored report for one analysis run.
type DailyReport struct {
	ID          string              `json:"id"`
	Date        string              `json:"date"` // 2006-01-02, storage key
	GeneratedAt time.Time           `json:"generated_at"`
	Markdown    string              `json:"markdown"`
	Advice      *OperationAdvice    `json:"advice,omitempty"`
	Snapshot    *EvaluationSnapshot `json:"snapshot,omitempty"`
	ChartKey    string              `json:"chart_key,omitempty"` // weights chart PNG, when rendered
}
