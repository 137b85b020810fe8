package extraction

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/finanzio/statement-core/internal/category"
	"github.com/finanzio/statement-core/internal/config"
	"github.com/finanzio/statement-core/internal/domain"
)

// AIExtractor is the primary strategy: a single low-temperature chat call
// with a JSON response constraint, followed by defensive parsing of whatever
// the model actually returned.
type AIExtractor struct {
	apiKey          string
	model           string
	temperature     float64
	maxPromptChars  int
	defaultCurrency string
	log             zerolog.Logger

	// generate is the transport seam; tests replace it with canned responses.
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewAIExtractor creates the Gemini-backed extractor. The credential is not
// validated here; Extract reports ErrNotConfigured when it is missing.
func NewAIExtractor(cfg config.AIConfig, defaultCurrency string, log zerolog.Logger) *AIExtractor {
	e := &AIExtractor{
		apiKey:          cfg.APIKey,
		model:           cfg.Model,
		temperature:     cfg.Temperature,
		maxPromptChars:  cfg.MaxPromptChars,
		defaultCurrency: defaultCurrency,
		log:             log,
	}
	e.generate = e.generateContent
	return e
}

// Extract builds the category-scoped prompt, calls the model and coerces its
// response into candidates.
func (e *AIExtractor) Extract(ctx context.Context, text string, cats *category.Index) ([]domain.CandidateTransaction, error) {
	if e.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if err := validateInput(text); err != nil {
		return nil, err
	}

	prompt := buildPrompt(text, cats, e.maxPromptChars)
	raw, err := e.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	items, err := decodeTransactions(raw)
	if err != nil {
		return nil, err
	}
	return e.coerce(items, cats), nil
}

// generateContent performs the actual Gemini call. The response MIME type is
// pinned to JSON, but the parser still defends against the model ignoring it.
func (e *AIExtractor) generateContent(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      e.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", &ExternalServiceError{Provider: "gemini", Err: err}
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}
	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(e.temperature)),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, e.model, contents, genCfg)
	if err != nil {
		return "", &ExternalServiceError{Provider: "gemini", Err: err}
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", &ExternalServiceError{Provider: "gemini", Err: errors.New("empty response from model")}
	}
	return rawText, nil
}

// coerce filters and normalizes decoded items. Items missing any of date,
// amount or description are dropped; survivors get their suggested category
// resolved by exact name within their kind.
func (e *AIExtractor) coerce(items []map[string]interface{}, cats *category.Index) []domain.CandidateTransaction {
	out := make([]domain.CandidateTransaction, 0, len(items))
	dropped := 0

	for _, item := range items {
		date, ok := dateField(item, "date")
		if !ok {
			dropped++
			continue
		}
		amount, ok := amountField(item, "amount")
		if !ok || amount.IsZero() {
			dropped++
			continue
		}
		desc, ok := stringField(item, "description")
		if !ok {
			dropped++
			continue
		}

		kind := domain.KindExpense
		if t, ok := stringField(item, "type"); ok && domain.Kind(t) == domain.KindIncome {
			kind = domain.KindIncome
		}
		currency := e.defaultCurrency
		if c, ok := stringField(item, "currency"); ok {
			currency = c
		}

		candidate := domain.CandidateTransaction{
			Date:           date,
			Amount:         amount.Abs(),
			Description:    desc,
			Kind:           kind,
			Currency:       currency,
			SourceStrategy: domain.StrategyAI,
		}
		if suggested, ok := stringField(item, "suggestedCategory"); ok {
			candidate.SuggestedCategoryName = suggested
			if id, found := cats.Resolve(kind, suggested); found {
				candidate.CategoryID = id
			}
		}
		out = append(out, candidate)
	}

	if dropped > 0 {
		e.log.Debug().Int("dropped", dropped).Int("kept", len(out)).Msg("dropped incomplete model transactions")
	}
	return out
}
