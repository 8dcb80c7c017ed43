package main

import (
	"context"
	"flag"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/ledger"
	"github.com/dvloznov/finance-dashboard/internal/ledger/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/ledger/sqlite"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/notionexport"
)

func main() {
	log := logger.New()

	var (
		startStr = flag.String("start", "", "Start date (YYYY-MM-DD), defaults to 1 year ago")
		endStr   = flag.String("end", "", "End date (YYYY-MM-DD), defaults to today")
		dryRun   = flag.Bool("dry-run", false, "Report what would change without touching Notion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.NotionToken == "" || cfg.NotionDatabaseID == "" {
		log.Fatal().Msg("NOTION_TOKEN and NOTION_DATABASE_ID are required")
	}

	start := time.Now().AddDate(-1, 0, 0)
	if *startStr != "" {
		start, err = time.Parse("2006-01-02", *startStr)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -start date")
		}
	}
	end := time.Now()
	if *endStr != "" {
		end, err = time.Parse("2006-01-02", *endStr)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -end date")
		}
	}

	ctx := logger.WithContext(context.Background(), log)

	var store ledger.Store
	switch cfg.LedgerBackend {
	case "sqlite":
		store, err = sqlite.Open(cfg.SQLitePath, cfg.DefaultAccountID)
	case "bigquery":
		store, err = bigquery.Open(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	}
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.LedgerBackend).Msg("Failed to open ledger store")
	}
	defer store.Close()

	transactions, err := store.ListTransactions(ctx, start, end)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}

	txs := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		txs = append(txs, *tx)
	}

	client := notionexport.NewNotionClient(cfg.NotionToken)
	stats, err := notionexport.Sync(ctx, client, cfg.NotionDatabaseID, txs, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	log.Info().
		Int("created", stats.Created).
		Int("deleted", stats.Deleted).
		Int("skipped", stats.Skipped).
		Bool("dry_run", *dryRun).
		Msg("Notion sync finished")
}
