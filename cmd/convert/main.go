package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finanzio/statement-core/internal/config"
	"github.com/finanzio/statement-core/internal/domain"
	"github.com/finanzio/statement-core/internal/fx"
	"github.com/finanzio/statement-core/internal/logger"
)

type bucketTotal struct {
	Kind     domain.Kind     `json:"type"`
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
}

func main() {
	var (
		file       = flag.String("file", "", "path to a JSON batch of {amount, currency, type, date} items")
		target     = flag.String("to", "", "reporting currency to convert into")
		configName = flag.String("config", "statement-core", "config file base name")
	)
	flag.Parse()

	cfg, err := config.LoadWithName(*configName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.LogLevel).With().Str("run_id", uuid.NewString()).Logger()
	ctx := logger.WithContext(context.Background(), log)

	if *file == "" {
		log.Fatal().Msg("-file is required")
	}
	to := *target
	if to == "" {
		to = cfg.DefaultCurrency
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read batch file")
	}
	var items []fx.Item
	if err := json.Unmarshal(data, &items); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse batch file")
	}

	cache := fx.NewCache(cfg.FX.CurrentTTL)
	source := fx.NewHTTPSource(cfg.FX.BaseURL, cfg.FX.Timeout, log)
	resolver := fx.NewResolver(cache, source, log)
	converter := fx.NewConverter(resolver)

	agg, err := fx.NewAggregator(converter, cfg.FX.Workers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create aggregator")
	}
	defer agg.Close()

	totals := agg.Totals(ctx, items, to)
	log.Info().Int("items", len(items)).Int("buckets", len(totals)).Str("target", to).Msg("Conversion finished")

	out := make([]bucketTotal, 0, len(totals))
	for b, total := range totals {
		out = append(out, bucketTotal{Kind: b.Kind, Currency: b.Currency, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Currency < out[j].Currency
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]interface{}{
		"target": to,
		"totals": out,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode totals")
	}
}
