package engine

import (
	"fmt"
	"time"

	"github.com/simfolio/simfolio/internal/models"
)

// BuildRequest merges the portfolio snapshot, its alert sequence, and the
// caller-supplied per-code analyses into an advice payload. Pure assembly:
// the analyses are opaque pass-through data.
//
// When requireAnalysis is set, every position in the snapshot must have an
// analysis entry; the first absent code fails with ErrMissingAnalysis. The
// default policy is permissive.
func BuildRequest(policy models.RiskPolicy, snapshot *models.EvaluationSnapshot, analyses map[string]*models.StockAnalysis, requireAnalysis bool) (*models.AdvicePayload, error) {
	if requireAnalysis {
		for i := range snapshot.Positions {
			code := snapshot.Positions[i].Code
			if _, ok := analyses[code]; !ok {
				return nil, fmt.Errorf("%w: no analysis supplied for held position %s", ErrMissingAnalysis, code)
			}
		}
	}

	return &models.AdvicePayload{
		GeneratedAt: time.Now(),
		Policy:      policy,
		Snapshot:    snapshot,
		Analyses:    analyses,
	}, nil
}
