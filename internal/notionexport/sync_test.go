package notionexport

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

type mockNotion struct {
	pages   []notionapi.Page
	created []notionapi.Properties
	deleted []string
}

func (m *mockNotion) CreatePage(_ context.Context, _ string, props notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, props)
	return &notionapi.Page{ID: notionapi.ObjectID("new-page")}, nil
}

func (m *mockNotion) QueryDatabase(_ context.Context, _ string, _ *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: m.pages, HasMore: false}, nil
}

func (m *mockNotion) DeletePage(_ context.Context, pageID string) error {
	m.deleted = append(m.deleted, pageID)
	return nil
}

func pageWithTransactionID(pageID, txID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Transaction ID": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: txID}},
			},
		},
	}
}

func sampleTx(id string) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		AccountID:     "2",
		Description:   "coffee shop",
		Amount:        "4.50",
		Date:          "2025-03-01",
		Category:      "Food",
		Type:          "expense",
	}
}

func TestSync_CreatesMissingPages(t *testing.T) {
	mock := &mockNotion{}
	stats, err := Sync(context.Background(), mock, "db", []domain.Transaction{sampleTx("tx-1"), sampleTx("tx-2")}, false)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Created != 2 || stats.Skipped != 0 || stats.Deleted != 0 {
		t.Errorf("stats = %+v, want 2 created", stats)
	}
	if len(mock.created) != 2 {
		t.Fatalf("created %d pages, want 2", len(mock.created))
	}
}

func TestSync_SkipsExistingAndDeletesStale(t *testing.T) {
	mock := &mockNotion{
		pages: []notionapi.Page{
			pageWithTransactionID("page-keep", "tx-1"),
			pageWithTransactionID("page-stale", "tx-gone"),
		},
	}

	stats, err := Sync(context.Background(), mock, "db", []domain.Transaction{sampleTx("tx-1")}, false)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Skipped != 1 || stats.Created != 0 || stats.Deleted != 1 {
		t.Errorf("stats = %+v, want skipped=1 deleted=1", stats)
	}
	if len(mock.deleted) != 1 || mock.deleted[0] != "page-stale" {
		t.Errorf("deleted = %v, want [page-stale]", mock.deleted)
	}
}

func TestSync_DryRunTouchesNothing(t *testing.T) {
	mock := &mockNotion{
		pages: []notionapi.Page{pageWithTransactionID("page-stale", "tx-gone")},
	}

	stats, err := Sync(context.Background(), mock, "db", []domain.Transaction{sampleTx("tx-1")}, true)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Created != 1 || stats.Deleted != 1 {
		t.Errorf("stats = %+v, want created=1 deleted=1 reported", stats)
	}
	if len(mock.created) != 0 || len(mock.deleted) != 0 {
		t.Error("dry run must not call Notion mutations")
	}
}

func TestTransactionToProperties(t *testing.T) {
	props := TransactionToProperties(sampleTx("tx-9"))

	title, ok := props["Transaction ID"].(notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 || title.Title[0].Text.Content != "tx-9" {
		t.Errorf("Transaction ID property = %#v", props["Transaction ID"])
	}
	amount, ok := props["Amount"].(notionapi.NumberProperty)
	if !ok || amount.Number != 4.5 {
		t.Errorf("Amount property = %#v", props["Amount"])
	}
	if _, ok := props["Date"].(notionapi.DateProperty); !ok {
		t.Errorf("Date property = %#v", props["Date"])
	}
}
