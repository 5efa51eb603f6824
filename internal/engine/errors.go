// Package engine implements the position and risk evaluation engine: trading
// cost settlement, position valuation, portfolio aggregation, risk
// classification, and advice request assembly. Every function is a pure
// computation over its inputs; the engine performs no I/O.
package engine

import "errors"

var (
	// ErrInvalidInput is returned for non-positive price or share inputs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingAnalysis is returned when the advice request builder requires
	// an analysis for every held position and one is absent.
	ErrMissingAnalysis = errors.New("missing analysis")

	// ErrSettlementViolation is returned when a trade would drive available
	// cash negative. The portfolio is left unchanged.
	ErrSettlementViolation = errors.New("settlement violation")
)
