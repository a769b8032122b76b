package server

import (
	"context"
	"net/http"

	"github.com/storelake/fakestore-etl/internal/ledger"
	"github.com/storelake/fakestore-etl/internal/repository/bronze"
	"github.com/storelake/fakestore-etl/internal/runner"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(baseCtx context.Context, run *runner.Runner, ledgerRepo ledger.Repository, bronzeRepo *bronze.Repository) http.Handler {
	h := &handler{
		runCtx: baseCtx,
		runner: run,
		ledger: ledgerRepo,
		bronze: bronzeRepo,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/domains", h.listDomains)
	mux.HandleFunc("POST /api/v1/runs", h.triggerRuns)
	mux.HandleFunc("GET /api/v1/runs", h.listRuns)
	mux.HandleFunc("GET /api/v1/runs/{batchId}", h.getRun)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
