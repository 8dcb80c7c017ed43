package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the dashboard and agent binaries.
// Values come from the environment, with an optional .env file loaded first.
type Config struct {
	// Port is the HTTP listen port for the owning binary.
	Port string

	// AgentURL is the base URL of the agent service the dashboard talks to.
	AgentURL string

	// LedgerBackend selects the ledger store: "sqlite" or "bigquery".
	LedgerBackend string

	// SQLitePath is the sqlite database file for the local ledger backend.
	SQLitePath string

	// BigQueryProject and BigQueryDataset locate the cloud ledger backend.
	BigQueryProject string
	BigQueryDataset string

	// GCSBucket, when set, enables background archival of submitted
	// statements to Google Cloud Storage.
	GCSBucket string

	// DefaultAccountID is the account that materialized transactions are
	// associated with when the agent does not supply one.
	DefaultAccountID string

	// JWTSecret, when set, enables bearer-token authentication on the API.
	JWTSecret string

	// GeminiModel is the model used by the agent for statement extraction.
	GeminiModel string

	// NotionToken and NotionDatabaseID configure the Notion export.
	NotionToken      string
	NotionDatabaseID string
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments configure the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getenv("PORT", "8080"),
		AgentURL:         getenv("AGENT_URL", "http://localhost:8000"),
		LedgerBackend:    getenv("LEDGER_BACKEND", "sqlite"),
		SQLitePath:       getenv("SQLITE_PATH", "finance-dashboard.db"),
		BigQueryProject:  os.Getenv("BQ_PROJECT"),
		BigQueryDataset:  getenv("BQ_DATASET", "finance"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		DefaultAccountID: getenv("DEFAULT_ACCOUNT_ID", "2"),
		JWTSecret:        os.Getenv("AUTH_JWT_SECRET"),
		GeminiModel:      getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LedgerBackend {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("config: SQLITE_PATH is required for the sqlite ledger backend")
		}
	case "bigquery":
		if c.BigQueryProject == "" {
			return fmt.Errorf("config: BQ_PROJECT is required for the bigquery ledger backend")
		}
	default:
		return fmt.Errorf("config: unknown LEDGER_BACKEND %q (want sqlite or bigquery)", c.LedgerBackend)
	}

	if c.DefaultAccountID == "" {
		return fmt.Errorf("config: DEFAULT_ACCOUNT_ID must not be empty")
	}

	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
