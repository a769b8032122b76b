// Package server exposes the run trigger and the ledger over HTTP. This is
// the orchestration boundary: an external scheduler POSTs a run and reads
// the outcome back from the ledger endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/storelake/fakestore-etl/internal/ledger"
	"github.com/storelake/fakestore-etl/internal/repository/bronze"
	"github.com/storelake/fakestore-etl/internal/runner"
)

type Server struct {
	srv *http.Server
}

// New creates a server. The baseCtx is used as the base context for all
// incoming requests and for triggered ingestion runs, so cancelling it
// winds everything down together.
func New(baseCtx context.Context, port string, run *runner.Runner, ledgerRepo ledger.Repository, bronzeRepo *bronze.Repository) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: NewHandler(baseCtx, run, ledgerRepo, bronzeRepo),
			BaseContext: func(_ net.Listener) context.Context {
				return baseCtx
			},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server")
	return s.srv.Shutdown(ctx)
}
