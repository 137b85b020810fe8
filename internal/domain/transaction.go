package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Kind classifies the direction of a transaction. Income and expense
// categories live in disjoint namespaces.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Strategy records which extraction engine produced a candidate. It is set
// once at creation and never mutated.
type Strategy string

const (
	StrategyAI    Strategy = "ai"
	StrategyRegex Strategy = "regex"
)

// CandidateTransaction is a provisional transaction extracted from statement
// text. It has no identity beyond its position in the result list; the caller
// either turns it into a real transaction or discards it.
type CandidateTransaction struct {
	Date        civil.Date      `json:"date"`
	Amount      decimal.Decimal `json:"amount"` // positive magnitude; direction lives in Kind
	Description string          `json:"description"`
	Kind        Kind            `json:"type"`
	Currency    string          `json:"currency"`

	// SuggestedCategoryName is the free-text label proposed by the AI
	// strategy, preserved even when it resolves to nothing so the caller can
	// offer manual resolution.
	SuggestedCategoryName string `json:"suggestedCategory,omitempty"`

	// CategoryID is the resolved category identifier, empty when the
	// suggestion did not match any supplied category exactly.
	CategoryID string `json:"categoryId,omitempty"`

	SourceStrategy Strategy `json:"sourceStrategy"`
}

// CategoryRef is one entry of the caller-supplied category taxonomy. The
// extraction subsystem treats the taxonomy as a read-only lookup table keyed
// by exact name per kind.
type CategoryRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     Kind   `json:"type"`
	IconHint string `json:"icon,omitempty"`
}
