package fx

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
)

// Resolver answers "what was one FROM worth in TO on this date" and never
// fails: historical lookup, then current rate, then identity. Degrading to
// identity silently misstates cross-currency totals, so it is logged even
// though it is not an error to the caller.
type Resolver struct {
	cache  *Cache
	source Source
	log    zerolog.Logger
}

// NewResolver wires the cache and data source. The cache is injected rather
// than owned so its lifecycle (one per process) is the caller's decision and
// tests stay isolated.
func NewResolver(cache *Cache, source Source, log zerolog.Logger) *Resolver {
	return &Resolver{cache: cache, source: source, log: log}
}

// Resolve returns a usable rate for (from, to, date). Same-currency pairs
// short-circuit to 1 without touching the cache or the network.
func (r *Resolver) Resolve(ctx context.Context, from, to string, date civil.Date) float64 {
	if from == to {
		return 1
	}

	key := HistoricalKey(from, to, date)
	if e, ok := r.cache.Get(key); ok {
		return e.Rate
	}

	rates, err := r.source.Historical(ctx, from, date)
	if err == nil {
		if rate, ok := rates[to]; ok && rate > 0 {
			r.cache.Put(Entry{Key: key, Rate: rate, FetchedAt: r.cache.now()})
			return rate
		}
		r.log.Warn().Str("from", from).Str("to", to).Str("date", date.String()).
			Msg("historical rates missing target currency, trying current rate")
	} else {
		r.log.Warn().Err(err).Str("from", from).Str("to", to).Str("date", date.String()).
			Msg("historical rate lookup failed, trying current rate")
	}

	return r.resolveCurrent(ctx, from, to)
}

// resolveCurrent is the degraded path: a time-boxed current rate, refetched
// when the cached one has aged past the freshness window, and identity when
// even that fails.
func (r *Resolver) resolveCurrent(ctx context.Context, from, to string) float64 {
	key := CurrentKey(from, to)
	if e, ok := r.cache.Get(key); ok {
		return e.Rate
	}

	rates, err := r.source.Latest(ctx, from)
	if err == nil {
		if rate, ok := rates[to]; ok && rate > 0 {
			r.cache.Put(Entry{Key: key, Rate: rate, FetchedAt: r.cache.now()})
			return rate
		}
	} else {
		r.log.Warn().Err(err).Str("from", from).Str("to", to).Msg("current rate lookup failed")
	}

	r.log.Warn().Str("from", from).Str("to", to).
		Msg("no exchange rate available, using identity rate")
	return 1
}
