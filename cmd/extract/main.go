package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/finanzio/statement-core/internal/category"
	"github.com/finanzio/statement-core/internal/config"
	"github.com/finanzio/statement-core/internal/domain"
	"github.com/finanzio/statement-core/internal/extraction"
	"github.com/finanzio/statement-core/internal/gcs"
	"github.com/finanzio/statement-core/internal/logger"
)

func main() {
	var (
		file       = flag.String("file", "", "path to a statement text file")
		gcsURI     = flag.String("gcs", "", "gs:// URI of a statement text object")
		catsFile   = flag.String("categories", "", "path to a JSON file with the user's categories")
		bqProject  = flag.String("bq-project", "", "BigQuery project to load categories from")
		bqTable    = flag.String("bq-table", "finance.categories", "BigQuery table holding the category taxonomy")
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

	text, err := readStatement(ctx, *file, *gcsURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read statement text")
	}

	refs, err := loadCategories(ctx, *catsFile, *bqProject, *bqTable)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load categories")
	}
	log.Info().Int("categories", len(refs)).Bool("ai_configured", cfg.AI.Configured()).Msg("Starting extraction")

	ai := extraction.NewAIExtractor(cfg.AI, cfg.DefaultCurrency, log)
	rex := extraction.NewRegexExtractor(cfg.DefaultCurrency)
	svc := extraction.NewService(ai, rex, cfg.AI.Configured(), log)

	result, err := svc.ExtractTransactions(ctx, text, category.NewIndex(refs))
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}
	log.Info().Str("strategy", string(result.Strategy)).Int("candidates", len(result.Candidates)).Msg("Extraction finished")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
}

func readStatement(ctx context.Context, file, gcsURI string) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case gcsURI != "":
		fetcher, err := gcs.NewFetcher(ctx)
		if err != nil {
			return "", err
		}
		defer fetcher.Close()
		data, err := fetcher.Fetch(ctx, gcsURI)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("either -file or -gcs is required")
	}
}

func loadCategories(ctx context.Context, catsFile, bqProject, bqTable string) ([]domain.CategoryRef, error) {
	switch {
	case catsFile != "":
		data, err := os.ReadFile(catsFile)
		if err != nil {
			return nil, err
		}
		var refs []domain.CategoryRef
		if err := json.Unmarshal(data, &refs); err != nil {
			return nil, fmt.Errorf("parse categories file: %w", err)
		}
		return refs, nil
	case bqProject != "":
		provider, err := category.NewProvider(ctx, bqProject, bqTable)
		if err != nil {
			return nil, err
		}
		defer provider.Close()
		return provider.ListCategories(ctx)
	default:
		return nil, nil
	}
}
