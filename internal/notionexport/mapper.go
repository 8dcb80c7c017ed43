package notionexport

import (
	"strconv"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// TransactionToProperties converts a ledger transaction to Notion database
// properties. The Transaction ID title property is what Sync keys on.
func TransactionToProperties(tx domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Transaction ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.TransactionID,
					},
				},
			},
		},
	}

	if tx.Description != "" {
		props["Description"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Description,
					},
				},
			},
		}
	}

	if amount, err := strconv.ParseFloat(tx.Amount, 64); err == nil {
		props["Amount"] = notionapi.NumberProperty{
			Number: amount,
		}
	}

	if day, err := time.Parse("2006-01-02", tx.Date); err == nil {
		d := notionapi.Date(day)
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &d,
			},
		}
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		}
	}

	if tx.Type != "" {
		props["Type"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Type,
			},
		}
	}

	if tx.AccountID != "" {
		props["Account"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.AccountID,
			},
		}
	}

	return props
}

// extractTransactionID pulls the Transaction ID title out of a Notion page,
// returning "" when the page does not carry one.
func extractTransactionID(page notionapi.Page) string {
	prop, ok := page.Properties["Transaction ID"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
