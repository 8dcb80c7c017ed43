package main

import (
	"net/http"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/agent"
)

func TestNewServer_WriteDeadlineOutlastsAgentRoundTrip(t *testing.T) {
	srv := newServer(":0", http.NewServeMux())

	if srv.WriteTimeout <= agent.RequestTimeout {
		t.Errorf("WriteTimeout = %v, must exceed the agent client timeout %v", srv.WriteTimeout, agent.RequestTimeout)
	}
	if srv.Addr != ":0" {
		t.Errorf("Addr = %q, want :0", srv.Addr)
	}
}
