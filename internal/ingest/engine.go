package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/storelake/fakestore-etl/internal/etlerror"
)

// Engine performs one incremental ingestion batch: read the high-water
// mark, fetch the full upstream collection, keep records above the mark,
// and land every kept record as a bronze row, success or failed.
type Engine struct {
	bronze  BronzeRepository
	fetcher Fetcher
	source  string
}

func NewEngine(bronze BronzeRepository, fetcher Fetcher, sourceSystem string) *Engine {
	if sourceSystem == "" {
		sourceSystem = DefaultSourceSystem
	}
	return &Engine{bronze: bronze, fetcher: fetcher, source: sourceSystem}
}

// Ingest runs one batch for the domain. A fetch or bulk-write failure
// aborts the run; per-record problems downgrade only that record to a
// failed row. Duplicates within one upstream response are kept as-is:
// deduplication happens only against the stored high-water mark.
func (e *Engine) Ingest(ctx context.Context, batchID string, d Domain) (Summary, error) {
	sum := Summary{Domain: d}

	lastID, err := e.bronze.LastEntityID(ctx, d)
	if err != nil {
		return sum, fmt.Errorf("high-water mark for %s: %w", d, err)
	}

	records, err := e.fetcher.Fetch(ctx, d)
	if err != nil {
		return sum, fmt.Errorf("fetch %s: %w", d, err)
	}
	sum.Fetched = len(records)

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		id, ok := entityID(rec)
		if ok && id <= lastID {
			continue
		}
		row := e.buildRow(batchID, d, rec, id, ok)
		if row.Status == RowStatusFailed {
			sum.Failed++
		} else {
			sum.Success++
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		slog.Info("no new data", "domain", d, "batch", batchID,
			"fetched", len(records), "lastID", lastID)
		return sum, nil
	}

	if _, err := e.bronze.SaveRows(ctx, d, rows); err != nil {
		return sum, etlerror.Wrap(etlerror.KindBulkWrite,
			fmt.Sprintf("save %d rows to %s", len(rows), d.Table()), err)
	}

	slog.Info("ingested batch", "domain", d, "batch", batchID,
		"lastID", lastID, "rows", len(rows), "success", sum.Success, "failed", sum.Failed)
	return sum, nil
}

func (e *Engine) buildRow(batchID string, d Domain, rec json.RawMessage, id int64, ok bool) Row {
	row := Row{
		RawJSON:       rec,
		SourceSystem:  e.source,
		BatchID:       batchID,
		Domain:        d,
		DataSizeBytes: int64(len(rec)),
		Status:        RowStatusSuccess,
	}
	if ok {
		row.EntityID = &id
	} else {
		row.Status = RowStatusFailed
		row.ErrorMessage = etlerror.New(etlerror.KindRowBuild,
			`missing or non-numeric identifier field "id"`).Error()
	}
	return row
}
