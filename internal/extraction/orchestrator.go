package extraction

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/finanzio/statement-core/internal/category"
	"github.com/finanzio/statement-core/internal/domain"
)

// Service selects the extraction strategy and applies the fallback chain. AI
// failure is never fatal to the overall request: any error from the AI
// strategy is logged and answered with the regex result instead.
type Service struct {
	ai           Extractor
	regex        Extractor
	aiConfigured bool
	log          zerolog.Logger
}

// NewService wires the two strategies. aiConfigured reflects credential
// availability; when false the AI strategy is never attempted.
func NewService(ai, regex Extractor, aiConfigured bool, log zerolog.Logger) *Service {
	return &Service{
		ai:           ai,
		regex:        regex,
		aiConfigured: aiConfigured,
		log:          log,
	}
}

// ExtractTransactions runs extraction over the statement text. The returned
// strategy always names the engine that actually produced the candidates.
func (s *Service) ExtractTransactions(ctx context.Context, text string, cats *category.Index) (*Result, error) {
	if err := validateInput(text); err != nil {
		return nil, err
	}

	if s.aiConfigured {
		candidates, err := s.ai.Extract(ctx, text, cats)
		if err == nil {
			s.log.Info().Int("candidates", len(candidates)).Msg("AI extraction succeeded")
			return &Result{Candidates: candidates, Strategy: domain.StrategyAI}, nil
		}
		s.log.Warn().Err(err).Msg("AI extraction failed, falling back to regex")
	}

	candidates, err := s.regex.Extract(ctx, text, cats)
	if err != nil {
		return nil, err
	}
	return &Result{Candidates: candidates, Strategy: domain.StrategyRegex}, nil
}
