package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finanzio/statement-core/internal/domain"
)

func newTestConverter(src *stubSource) *Converter {
	r, _ := newTestResolver(src)
	return NewConverter(r)
}

func TestConverter_SameCurrencyIsExact(t *testing.T) {
	src := &stubSource{}
	conv := newTestConverter(src)

	got := conv.Convert(context.Background(), decimal.RequireFromString("100"), "USD", "USD", testDate)
	assert.True(t, got.Equal(decimal.RequireFromString("100")), "got %v", got)
	assert.Zero(t, src.histCalls)
	assert.Zero(t, src.latestCalls)
}

func TestConverter_MultipliesWithoutRounding(t *testing.T) {
	src := &stubSource{histRates: map[string]float64{"EUR": 0.915}}
	conv := newTestConverter(src)

	got := conv.Convert(context.Background(), decimal.RequireFromString("10.33"), "USD", "EUR", testDate)
	// 10.33 * 0.915 = 9.45195; the raw product is preserved for the caller.
	assert.True(t, got.Equal(decimal.RequireFromString("9.45195")), "got %v", got)
}

func TestConverter_ZeroAndNegativePassThrough(t *testing.T) {
	src := &stubSource{histRates: map[string]float64{"EUR": 2}}
	conv := newTestConverter(src)

	zero := conv.Convert(context.Background(), decimal.Zero, "USD", "EUR", testDate)
	assert.True(t, zero.IsZero())

	neg := conv.Convert(context.Background(), decimal.RequireFromString("-5"), "USD", "EUR", testDate)
	assert.True(t, neg.Equal(decimal.RequireFromString("-10")), "got %v", neg)
}

func TestAggregator_TotalsPerBucket(t *testing.T) {
	src := &stubSource{histRates: map[string]float64{"USD": 0.25, "EUR": 0.5}}
	conv := newTestConverter(src)
	agg, err := NewAggregator(conv, 4, zerolog.Nop())
	require.NoError(t, err)
	defer agg.Close()

	items := []Item{
		{Amount: decimal.RequireFromString("100"), Currency: "GBP", Kind: domain.KindExpense, Date: testDate},
		{Amount: decimal.RequireFromString("50"), Currency: "GBP", Kind: domain.KindExpense, Date: testDate},
		{Amount: decimal.RequireFromString("200"), Currency: "GBP", Kind: domain.KindIncome, Date: testDate},
		{Amount: decimal.RequireFromString("30"), Currency: "EUR", Kind: domain.KindExpense, Date: testDate},
	}

	// Target currency matches the source for EUR items, so those skip
	// resolution entirely.
	totals := agg.Totals(context.Background(), items, "EUR")

	require.Len(t, totals, 3)
	gbpExpense := totals[Bucket{Kind: domain.KindExpense, Currency: "GBP"}]
	assert.True(t, gbpExpense.Equal(decimal.RequireFromString("75")), "got %v", gbpExpense) // (100+50) * 0.5
	gbpIncome := totals[Bucket{Kind: domain.KindIncome, Currency: "GBP"}]
	assert.True(t, gbpIncome.Equal(decimal.RequireFromString("100")), "got %v", gbpIncome)
	eurExpense := totals[Bucket{Kind: domain.KindExpense, Currency: "EUR"}]
	assert.True(t, eurExpense.Equal(decimal.RequireFromString("30")), "got %v", eurExpense)
}

func TestAggregator_RoundsOnlyAtBoundary(t *testing.T) {
	src := &stubSource{histRates: map[string]float64{"EUR": 0.333}}
	conv := newTestConverter(src)
	agg, err := NewAggregator(conv, 2, zerolog.Nop())
	require.NoError(t, err)
	defer agg.Close()

	// Each conversion alone is 3.33666; rounding each first would give
	// 3.34 * 3 = 10.02. Summing then rounding gives 10.01.
	items := make([]Item, 3)
	for i := range items {
		items[i] = Item{Amount: decimal.RequireFromString("10.02"), Currency: "USD", Kind: domain.KindExpense, Date: testDate}
	}

	totals := agg.Totals(context.Background(), items, "EUR")
	got := totals[Bucket{Kind: domain.KindExpense, Currency: "USD"}]
	assert.True(t, got.Equal(decimal.RequireFromString("10.01")), "got %v", got)
}

func TestAggregator_DegradedSourceStillCompletes(t *testing.T) {
	src := &stubSource{
		histErr:   errors.New("down"),
		latestErr: errors.New("down"),
	}
	conv := newTestConverter(src)
	agg, err := NewAggregator(conv, 4, zerolog.Nop())
	require.NoError(t, err)
	defer agg.Close()

	items := []Item{
		{Amount: decimal.RequireFromString("100"), Currency: "COP", Kind: domain.KindExpense, Date: testDate},
	}
	totals := agg.Totals(context.Background(), items, "USD")

	got := totals[Bucket{Kind: domain.KindExpense, Currency: "COP"}]
	assert.True(t, got.Equal(decimal.RequireFromString("100")), "identity degradation keeps the amount, got %v", got)
}

func TestAggregator_ConcurrentBatch(t *testing.T) {
	src := &stubSource{histRates: map[string]float64{"EUR": 0.5}}
	conv := newTestConverter(src)
	agg, err := NewAggregator(conv, 8, zerolog.Nop())
	require.NoError(t, err)
	defer agg.Close()

	items := make([]Item, 200)
	for i := range items {
		items[i] = Item{Amount: decimal.RequireFromString("1"), Currency: "USD", Kind: domain.KindExpense, Date: testDate}
	}

	totals := agg.Totals(context.Background(), items, "EUR")
	got := totals[Bucket{Kind: domain.KindExpense, Currency: "USD"}]
	assert.True(t, got.Equal(decimal.RequireFromString("100")), "got %v", got)
}

func TestAggregator_Timing(t *testing.T) {
	// The pool is bounded; a batch larger than the pool must still finish.
	src := &stubSource{histRates: map[string]float64{"EUR": 0.5}}
	conv := newTestConverter(src)
	agg, err := NewAggregator(conv, 1, zerolog.Nop())
	require.NoError(t, err)
	defer agg.Close()

	done := make(chan struct{})
	go func() {
		items := make([]Item, 50)
		for i := range items {
			items[i] = Item{Amount: decimal.New(1, 0), Currency: "USD", Kind: domain.KindIncome, Date: testDate}
		}
		agg.Totals(context.Background(), items, "EUR")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("bounded pool deadlocked on a large batch")
	}
}
