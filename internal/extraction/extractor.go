package extraction

import (
	"context"

	"github.com/finanzio/statement-core/internal/category"
	"github.com/finanzio/statement-core/internal/domain"
)

// Extractor turns raw statement text into candidate transactions. Both
// strategies (AI and regex) implement it; the orchestrator picks one.
type Extractor interface {
	Extract(ctx context.Context, text string, cats *category.Index) ([]domain.CandidateTransaction, error)
}

// Result is what the orchestrator hands back to the caller: the candidates
// plus the strategy that actually produced them. Provenance is user-visible,
// so it always reflects the engine that ran, not the one that was asked for.
type Result struct {
	Candidates []domain.CandidateTransaction `json:"candidates"`
	Strategy   domain.Strategy               `json:"strategy"`
}
