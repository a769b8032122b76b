// Package runner drives ingestion batches: one batch id, one ledger entry,
// one engine run per domain, with the ledger entry always closed.
package runner

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/storelake/fakestore-etl/internal/etlerror"
	"github.com/storelake/fakestore-etl/internal/ingest"
	"github.com/storelake/fakestore-etl/internal/ledger"
)

// Engine runs one incremental batch for a domain.
type Engine interface {
	Ingest(ctx context.Context, batchID string, d ingest.Domain) (ingest.Summary, error)
}

type Runner struct {
	engine Engine
	ledger ledger.Repository
	source string
}

func New(engine Engine, ledgerRepo ledger.Repository, sourceSystem string) *Runner {
	if sourceSystem == "" {
		sourceSystem = ingest.DefaultSourceSystem
	}
	return &Runner{engine: engine, ledger: ledgerRepo, source: sourceSystem}
}

// RunDomain executes one batch. The ledger entry is opened before the
// engine runs and always moved to a terminal status, even when the engine
// fails; the engine's error is returned so the caller observes the failure.
func (r *Runner) RunDomain(ctx context.Context, d ingest.Domain) (sum ingest.Summary, err error) {
	batchID := uuid.NewString()

	entry := &ledger.Entry{BatchID: batchID, SourceSystem: r.source, Domain: string(d)}
	if lerr := r.ledger.Start(ctx, entry); lerr != nil {
		// A batch without a ledger entry is not auditable; stop before
		// touching the upstream.
		return ingest.Summary{Domain: d}, etlerror.Wrap(etlerror.KindLedger, "start entry", lerr)
	}

	defer func() {
		status, msg := ledger.StatusSuccess, ""
		if err != nil {
			status, msg = ledger.StatusFailed, err.Error()
		}
		if lerr := r.ledger.Finish(ctx, batchID, status, msg); lerr != nil {
			// Best effort: a ledger write failure never masks the run outcome.
			slog.Error("ledger finish failed", "batch", batchID, "domain", d, "error", lerr)
		}
	}()

	slog.Info("starting batch", "batch", batchID, "domain", d)

	sum, err = r.engine.Ingest(ctx, batchID, d)
	if err != nil {
		slog.Error("batch failed", "batch", batchID, "domain", d, "error", err)
		return sum, err
	}
	return sum, nil
}

// RunAll runs every domain concurrently. The runs share no state, so a
// failure in one does not cancel the others; the first error is returned
// after all runs finish.
func (r *Runner) RunAll(ctx context.Context) error {
	var g errgroup.Group
	for _, d := range ingest.Domains() {
		g.Go(func() error {
			_, err := r.RunDomain(ctx, d)
			return err
		})
	}
	return g.Wait()
}
