package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
)

// Routes wires the dashboard endpoints onto a mux.
func Routes(sessions *SessionsHandler, ledger *LedgerHandler, previews *PreviewsHandler, archives *ArchiveHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sessions.Create(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/sessions/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
		parts := strings.SplitN(rest, "/", 2)
		sessionID := parts[0]
		if sessionID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Session ID is required")
			return
		}

		if len(parts) == 1 {
			if r.Method == http.MethodDelete {
				sessions.Delete(w, r, sessionID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}

		switch parts[1] {
		case "messages":
			switch r.Method {
			case http.MethodGet:
				sessions.ListMessages(w, r, sessionID)
			case http.MethodPost:
				sessions.Submit(w, r, sessionID)
			default:
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		case "attachment":
			switch r.Method {
			case http.MethodPost:
				sessions.SelectAttachment(w, r, sessionID)
			case http.MethodDelete:
				sessions.ClearAttachment(w, r, sessionID)
			default:
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		case "transcript":
			if r.Method == http.MethodGet {
				sessions.Transcript(w, r, sessionID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		case "events":
			if r.Method == http.MethodGet {
				sessions.Events(w, r, sessionID)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		default:
			middleware.WriteError(w, http.StatusNotFound, "Not found")
		}
	})

	mux.HandleFunc("/api/previews/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		handle := strings.TrimPrefix(r.URL.Path, "/api/previews/")
		if handle == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Preview ID is required")
			return
		}
		previews.Serve(w, r, handle)
	})

	mux.HandleFunc("/api/archive/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		// Object names contain slashes (statements/<date>/<session>/...), so
		// everything after the prefix is the name.
		objectName := strings.TrimPrefix(r.URL.Path, "/api/archive/")
		if objectName == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Object name is required")
			return
		}
		archives.Serve(w, r, objectName)
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ledger.ListTransactions(w, r)
		case http.MethodPost:
			ledger.CreateTransaction(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			ledger.ListAccounts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
