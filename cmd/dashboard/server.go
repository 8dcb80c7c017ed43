package main

import (
	"net/http"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/agent"
)

// newServer builds the dashboard's HTTP server. Submitting a message proxies
// the agent round trip synchronously, so the write deadline must outlast the
// agent client's timeout; a shorter deadline drops the response after the
// submission already succeeded server-side.
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: agent.RequestTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}
