package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/agent"
	"github.com/dvloznov/finance-dashboard/internal/api/handlers"
	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/archive"
	"github.com/dvloznov/finance-dashboard/internal/attach"
	"github.com/dvloznov/finance-dashboard/internal/chat"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/ledger"
	"github.com/dvloznov/finance-dashboard/internal/ledger/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/ledger/sqlite"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/notify"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	var port = flag.String("port", cfg.Port, "HTTP server port")
	flag.Parse()

	ctx := context.Background()

	// Ledger store
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

	// Statement archive, enabled when a bucket is configured
	var archiveQueue *archive.Queue
	var archiveStore archive.ObjectStore
	if cfg.GCSBucket != "" {
		gcsStore, err := archive.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archive store")
		}
		defer gcsStore.Close()
		archiveStore = gcsStore

		archiveQueue = archive.NewQueue(100, gcsStore, log)
		archiveQueue.Start(ctx, 2)
	} else {
		log.Warn().Msg("No GCS bucket configured - statement archiving is disabled")
	}

	// Conversation plumbing
	previewStore := attach.NewStore()
	hub := notify.NewHub(log)
	agentClient := agent.NewClient(cfg.AgentURL, log)
	materializer := ledger.NewMaterializer(ledger.NewStoreCreator(store), cfg.DefaultAccountID, log)
	registry := chat.NewRegistry(previewStore, agentClient, materializer, hub.ForSession, log)

	// Handlers
	sessionsHandler := handlers.NewSessionsHandler(registry, hub, archiveQueue, log)
	ledgerHandler := handlers.NewLedgerHandler(store, cfg.DefaultAccountID, log)
	previewsHandler := handlers.NewPreviewsHandler(previewStore)
	archiveHandler := handlers.NewArchiveHandler(archiveStore, log)

	mux := handlers.Routes(sessionsHandler, ledgerHandler, previewsHandler, archiveHandler)

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(cfg.JWTSecret)(mux),
				),
			),
		),
	)

	server := newServer(":"+*port, handler)

	go func() {
		log.Info().Str("port", *port).Str("ledger_backend", cfg.LedgerBackend).Msg("Starting dashboard server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if archiveQueue != nil {
		if err := archiveQueue.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Archive queue forced to stop")
		}
	}

	log.Info().Msg("Server exited")
}
