package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/storelake/fakestore-etl/internal/ingest"
	"github.com/storelake/fakestore-etl/internal/ledger"
	"github.com/storelake/fakestore-etl/internal/repository/bronze"
	"github.com/storelake/fakestore-etl/internal/runner"
)

type handler struct {
	// runCtx outlives individual requests; triggered runs inherit from it
	// so an in-flight batch is not cancelled when the trigger response
	// returns.
	runCtx context.Context
	runner *runner.Runner
	ledger ledger.Repository
	bronze *bronze.Repository
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listDomains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ingest.Domains())
}

// triggerRuns starts an ingestion run asynchronously and returns 202. Run
// outcomes are observed through the ledger endpoints; failures are also
// recorded there, so the trigger itself never reports them.
func (h *handler) triggerRuns(w http.ResponseWriter, r *http.Request) {
	domains := ingest.Domains()
	if v := r.URL.Query().Get("domain"); v != "" {
		d, err := ingest.ParseDomain(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		domains = []ingest.Domain{d}
	}

	go func() {
		for _, d := range domains {
			if _, err := h.runner.RunDomain(h.runCtx, d); err != nil {
				slog.Error("triggered run failed", "domain", d, "error", err)
			}
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{"domains": domains})
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	dom := r.URL.Query().Get("domain")
	if dom != "" {
		if _, err := ingest.ParseDomain(dom); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	status, ok := ledger.ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, "status must be IN_PROGRESS, SUCCESS, or FAILED")
		return
	}

	entries, err := h.ledger.List(r.Context(), dom, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

type runDetail struct {
	ledger.Entry
	Rows map[ingest.RowStatus]int64 `json:"rows,omitempty"`
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("batchId")

	entry, err := h.ledger.Get(r.Context(), batchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	detail := runDetail{Entry: *entry}
	if d, err := ingest.ParseDomain(entry.Domain); err == nil {
		counts, err := h.bronze.CountByStatus(r.Context(), d, batchID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		detail.Rows = counts
	}

	writeJSON(w, http.StatusOK, detail)
}
