package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/attach"
	"github.com/dvloznov/finance-dashboard/internal/logger"
)

// stubArchiveStore keeps archived objects in a map, addressed by gs:// URIs
// the way the production store is.
type stubArchiveStore struct {
	objects map[string][]byte
}

func (s *stubArchiveStore) Put(_ context.Context, objectName string, data []byte, _ string) error {
	s.objects[objectName] = data
	return nil
}

func (s *stubArchiveStore) Fetch(_ context.Context, uri string) ([]byte, error) {
	data, ok := s.objects[strings.TrimPrefix(uri, "gs://audit/")]
	if !ok {
		return nil, fmt.Errorf("object %s not found", uri)
	}
	return data, nil
}

func (s *stubArchiveStore) URI(objectName string) string { return "gs://audit/" + objectName }

func (s *stubArchiveStore) Close() error { return nil }

func TestArchive_ServeRoundTrip(t *testing.T) {
	store := &stubArchiveStore{objects: map[string][]byte{
		"statements/2025/03/01/sess-1/job-1-march.pdf": []byte("%PDF-1.4"),
	}}
	h := NewArchiveHandler(store, logger.NewWithWriter(io.Discard))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/archive/statements/2025/03/01/sess-1/job-1-march.pdf", nil)
	h.Serve(rec, req, "statements/2025/03/01/sess-1/job-1-march.pdf")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "%PDF-1.4" {
		t.Errorf("body = %q, want archived bytes", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="job-1-march.pdf"`) {
		t.Errorf("Content-Disposition = %q, want the object's base filename", cd)
	}
}

func TestArchive_UnknownObjectIs404(t *testing.T) {
	h := NewArchiveHandler(&stubArchiveStore{objects: map[string][]byte{}}, logger.NewWithWriter(io.Discard))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/archive/statements/nope.pdf", nil)
	h.Serve(rec, req, "statements/nope.pdf")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestArchive_NotConfiguredIs404(t *testing.T) {
	h := NewArchiveHandler(nil, logger.NewWithWriter(io.Discard))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/archive/statements/any.pdf", nil)
	h.Serve(rec, req, "statements/any.pdf")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestArchive_RoutedWithNestedObjectName(t *testing.T) {
	log := logger.NewWithWriter(io.Discard)
	store := &stubArchiveStore{objects: map[string][]byte{
		"statements/2025/03/01/sess-1/job-1-march.png": {0x89, 'P', 'N', 'G'},
	}}

	mux := Routes(
		NewSessionsHandler(nil, nil, nil, log),
		NewLedgerHandler(nil, "2", log),
		NewPreviewsHandler(attach.NewStore()),
		NewArchiveHandler(store, log),
	)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/archive/statements/2025/03/01/sess-1/job-1-march.png", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 4 {
		t.Errorf("body length = %d, want the archived object", rec.Body.Len())
	}
}
