package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Make sure ambient environment doesn't leak into the test.
	for _, key := range []string{"PORT", "AGENT_URL", "LEDGER_BACKEND", "SQLITE_PATH", "BQ_PROJECT", "DEFAULT_ACCOUNT_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LedgerBackend != "sqlite" {
		t.Errorf("LedgerBackend = %q, want sqlite", cfg.LedgerBackend)
	}
	if cfg.DefaultAccountID != "2" {
		t.Errorf("DefaultAccountID = %q, want 2", cfg.DefaultAccountID)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name:    "unknown backend",
			env:     map[string]string{"LEDGER_BACKEND": "postgres"},
			wantErr: true,
		},
		{
			name:    "bigquery without project",
			env:     map[string]string{"LEDGER_BACKEND": "bigquery", "BQ_PROJECT": ""},
			wantErr: true,
		},
		{
			name:    "bigquery with project",
			env:     map[string]string{"LEDGER_BACKEND": "bigquery", "BQ_PROJECT": "my-project"},
			wantErr: false,
		},
		{
			name:    "sqlite default",
			env:     map[string]string{"LEDGER_BACKEND": "sqlite"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
