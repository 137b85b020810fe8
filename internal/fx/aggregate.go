package fx

import (
	"context"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finanzio/statement-core/internal/domain"
)

// Item is one monetary observation to normalize into the reporting currency.
type Item struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Kind     domain.Kind     `json:"type"`
	Date     civil.Date      `json:"date"`
}

// Bucket keys a normalized total: the transaction kind plus the original
// currency the amounts were recorded in.
type Bucket struct {
	Kind     domain.Kind `json:"type"`
	Currency string      `json:"currency"`
}

// Aggregator converts batches of observations on a bounded worker pool. Each
// item's rate resolution is independent; the cache absorbs concurrent
// first-writes to the same historical key.
type Aggregator struct {
	converter *Converter
	pool      *ants.Pool
	log       zerolog.Logger
}

// NewAggregator creates an aggregator with the given pool size.
func NewAggregator(converter *Converter, workers int, log zerolog.Logger) (*Aggregator, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Aggregator{converter: converter, pool: pool, log: log}, nil
}

// Totals converts every item into the target currency and sums per bucket.
// Rounding to 2 decimal places happens once, here at the aggregation
// boundary. Conversion never fails (the resolver degrades to identity), so
// neither does this; items a full pool cannot accept run inline.
func (a *Aggregator) Totals(ctx context.Context, items []Item, target string) map[Bucket]decimal.Decimal {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		totals = make(map[Bucket]decimal.Decimal)
	)

	add := func(it Item) {
		converted := a.converter.Convert(ctx, it.Amount, it.Currency, target, it.Date)
		mu.Lock()
		b := Bucket{Kind: it.Kind, Currency: it.Currency}
		totals[b] = totals[b].Add(converted)
		mu.Unlock()
	}

	for _, it := range items {
		it := it
		wg.Add(1)
		if err := a.pool.Submit(func() {
			defer wg.Done()
			add(it)
		}); err != nil {
			a.log.Debug().Err(err).Msg("worker pool rejected conversion, running inline")
			add(it)
			wg.Done()
		}
	}
	wg.Wait()

	for b, total := range totals {
		totals[b] = total.Round(2)
	}
	return totals
}

// Close releases the worker pool.
func (a *Aggregator) Close() {
	a.pool.Release()
}
