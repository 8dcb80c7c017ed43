package notionexport

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// Stats reports what a sync run did.
type Stats struct {
	Created int
	Deleted int
	Skipped int
}

// Sync mirrors the given transactions into the Notion database. Pages are
// keyed by the Transaction ID title property: existing transactions are
// skipped, stale pages are archived, missing ones are created. With dryRun
// set, Sync only reports what it would do.
func Sync(ctx context.Context, client NotionService, databaseID string, transactions []domain.Transaction, dryRun bool) (Stats, error) {
	log := logger.FromContext(ctx)
	var stats Stats

	log.Info().
		Int("transaction_count", len(transactions)).
		Bool("dry_run", dryRun).
		Msg("starting transaction sync to Notion")

	valid := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		valid[tx.TransactionID] = true
	}

	pages, err := queryAllPages(ctx, client, databaseID)
	if err != nil {
		return stats, fmt.Errorf("query Notion pages: %w", err)
	}

	existing := make(map[string]bool, len(pages))
	for _, page := range pages {
		if id := extractTransactionID(page); id != "" {
			existing[id] = true
		}
	}

	// Archive pages for transactions the ledger no longer has.
	for _, page := range pages {
		id := extractTransactionID(page)
		if id != "" && valid[id] {
			continue
		}
		if dryRun {
			log.Info().
				Str("transaction_id", id).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] would delete stale Notion page")
			stats.Deleted++
			continue
		}
		if err := client.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", id).
				Str("page_id", string(page.ID)).
				Msg("failed to delete stale Notion page")
			continue
		}
		stats.Deleted++
	}

	for _, tx := range transactions {
		if existing[tx.TransactionID] {
			stats.Skipped++
			continue
		}

		if dryRun {
			log.Info().
				Str("transaction_id", tx.TransactionID).
				Msg("[DRY RUN] would create Notion page")
			stats.Created++
			continue
		}

		page, err := client.CreatePage(ctx, databaseID, TransactionToProperties(tx))
		if err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", tx.TransactionID).
				Msg("failed to create Notion page")
			continue
		}
		log.Info().
			Str("transaction_id", tx.TransactionID).
			Str("page_id", string(page.ID)).
			Msg("created Notion page")
		stats.Created++
	}

	log.Info().
		Int("created", stats.Created).
		Int("deleted", stats.Deleted).
		Int("skipped", stats.Skipped).
		Msg("transaction sync completed")

	return stats, nil
}

func queryAllPages(ctx context.Context, client NotionService, databaseID string) ([]notionapi.Page, error) {
	var all []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return all, nil
}
