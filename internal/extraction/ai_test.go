package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finanzio/statement-core/internal/category"
	"github.com/finanzio/statement-core/internal/config"
	"github.com/finanzio/statement-core/internal/domain"
)

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		APIKey:         "test-key",
		Model:          "gemini-2.5-flash",
		Temperature:    0.3,
		MaxPromptChars: 4000,
	}
}

func newStubbedAIExtractor(response string, err error) *AIExtractor {
	e := NewAIExtractor(testAIConfig(), "USD", zerolog.Nop())
	e.generate = func(ctx context.Context, prompt string) (string, error) {
		return response, err
	}
	return e
}

func testCategories() *category.Index {
	return category.NewIndex([]domain.CategoryRef{
		{ID: "cat-food", Name: "Alimentación", Kind: domain.KindExpense, IconHint: "🍎"},
		{ID: "cat-fun", Name: "Entretenimiento", Kind: domain.KindExpense},
		{ID: "cat-salary", Name: "Salario", Kind: domain.KindIncome},
	})
}

func TestAIExtractor_NotConfigured(t *testing.T) {
	cfg := testAIConfig()
	cfg.APIKey = ""
	e := NewAIExtractor(cfg, "USD", zerolog.Nop())

	_, err := e.Extract(context.Background(), "14/10/2025 $120.50 Supermercado", testCategories())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

func TestAIExtractor_ResolvesCategories(t *testing.T) {
	response := `{"transactions": [
		{"date": "2025-10-14", "amount": 120.50, "description": "Supermercado", "type": "expense", "suggestedCategory": "Alimentación", "currency": "USD"},
		{"date": "2025-10-15", "amount": 15.00, "description": "Cine", "type": "expense", "suggestedCategory": "NoSuchCategory"},
		{"date": "2025-10-31", "amount": 2500.00, "description": "Nómina", "type": "income", "suggestedCategory": "Salario", "currency": "EUR"}
	]}`
	e := newStubbedAIExtractor(response, nil)

	got, err := e.Extract(context.Background(), "statement text", testCategories())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}

	if got[0].CategoryID != "cat-food" {
		t.Errorf("exact match: categoryId = %q, want cat-food", got[0].CategoryID)
	}
	if got[0].SuggestedCategoryName != "Alimentación" {
		t.Errorf("suggestedCategory = %q", got[0].SuggestedCategoryName)
	}
	if got[0].SourceStrategy != domain.StrategyAI {
		t.Errorf("strategy = %v, want ai", got[0].SourceStrategy)
	}

	if got[1].CategoryID != "" {
		t.Errorf("unknown suggestion: categoryId = %q, want empty", got[1].CategoryID)
	}
	if got[1].SuggestedCategoryName != "NoSuchCategory" {
		t.Errorf("unresolved suggestion must be preserved, got %q", got[1].SuggestedCategoryName)
	}
	if got[1].Currency != "USD" {
		t.Errorf("missing currency should default, got %q", got[1].Currency)
	}

	if got[2].Kind != domain.KindIncome || got[2].CategoryID != "cat-salary" {
		t.Errorf("income candidate = %+v", got[2])
	}
	if got[2].Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", got[2].Currency)
	}
}

func TestAIExtractor_KindScopesLookup(t *testing.T) {
	// "Salario" exists only as an income category; an expense item
	// suggesting it must not resolve.
	response := `{"transactions": [
		{"date": "2025-10-14", "amount": 10, "description": "x", "type": "expense", "suggestedCategory": "Salario"}
	]}`
	e := newStubbedAIExtractor(response, nil)

	got, err := e.Extract(context.Background(), "statement text", testCategories())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got[0].CategoryID != "" {
		t.Errorf("cross-kind lookup resolved to %q, want empty", got[0].CategoryID)
	}
}

func TestAIExtractor_DropsIncompleteItems(t *testing.T) {
	response := `{"transactions": [
		{"date": "2025-10-14", "amount": 10, "description": "kept"},
		{"amount": 10, "description": "no date"},
		{"date": "2025-10-14", "description": "no amount"},
		{"date": "2025-10-14", "amount": 10},
		{"date": "not-a-date", "amount": 10, "description": "bad date"}
	]}`
	e := newStubbedAIExtractor(response, nil)

	got, err := e.Extract(context.Background(), "statement text", testCategories())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 1 || got[0].Description != "kept" {
		t.Fatalf("got %+v, want only the complete item", got)
	}
}

func TestAIExtractor_AmountIsMagnitude(t *testing.T) {
	response := `{"transactions": [
		{"date": "2025-10-14", "amount": -42.10, "description": "refund gone wrong", "type": "expense"},
		{"date": "2025-10-14", "amount": "19.99", "description": "string amount"}
	]}`
	e := newStubbedAIExtractor(response, nil)

	got, err := e.Extract(context.Background(), "statement text", testCategories())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !got[0].Amount.Equal(decimal.RequireFromString("42.10")) {
		t.Errorf("amount = %v, want positive magnitude 42.10", got[0].Amount)
	}
	if !got[1].Amount.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("string amount = %v, want 19.99", got[1].Amount)
	}
}

func TestAIExtractor_RecoversEmbeddedJSON(t *testing.T) {
	response := `The statement contains one transaction:
{"transactions": [{"date": "2025-10-14", "amount": 120.50, "description": "Supermercado", "type": "expense"}]}
Hope this helps!`
	e := newStubbedAIExtractor(response, nil)

	got, err := e.Extract(context.Background(), "statement text", testCategories())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != 1 || got[0].Description != "Supermercado" {
		t.Fatalf("got %+v, want the embedded transaction", got)
	}
}

func TestAIExtractor_ParseErrorOnGarbage(t *testing.T) {
	e := newStubbedAIExtractor("no structured data here", nil)

	_, err := e.Extract(context.Background(), "statement text", testCategories())
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("statement body", testCategories(), 4000)

	for _, want := range []string{`"Alimentación" 🍎`, `"Entretenimiento"`, `"Salario"`, "statement body", `"transactions"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_TruncatesText(t *testing.T) {
	long := strings.Repeat("x", 5000)
	prompt := buildPrompt(long, testCategories(), 4000)

	if strings.Contains(prompt, strings.Repeat("x", 4001)) {
		t.Error("statement text was not truncated")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 4000)) {
		t.Error("truncation cut below the bound")
	}
}
