// Package bronze persists landing rows. Table and identifier column names
// vary per domain; both come from the closed domain lookup and are composed
// with the squirrel builder, never interpolated from caller input.
package bronze

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/storelake/fakestore-etl/internal/ingest"
)

const batchSize = 500

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// LastEntityID returns the high-water mark for the domain. An empty table
// reads as 0 so a first run treats everything as new.
func (r *Repository) LastEntityID(ctx context.Context, d ingest.Domain) (int64, error) {
	if d.Table() == "" {
		return 0, fmt.Errorf("unknown domain %q", d)
	}

	query, args, err := sq.
		Select(fmt.Sprintf("COALESCE(MAX(%s), 0)", d.IDColumn())).
		From(d.Table()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build high-water query for %s: %w", d, err)
	}

	var lastID int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&lastID); err != nil {
		return 0, fmt.Errorf("last entity id for %s: %w", d, err)
	}
	return lastID, nil
}

// SaveRows lands all rows in the domain's table. Inserts are chunked to
// keep round trips low; chunks already committed stay committed if a later
// chunk fails.
func (r *Repository) SaveRows(ctx context.Context, d ingest.Domain, rows []ingest.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if d.Table() == "" {
		return 0, fmt.Errorf("unknown domain %q", d)
	}

	var total int64
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))

		ib := sq.Insert(d.Table()).Columns(
			d.IDColumn(), "raw_json", "source_system", "batch_id",
			"domain", "data_size_bytes", "processing_status", "error_message",
		)
		for _, row := range rows[i:end] {
			var entityID any
			if row.EntityID != nil {
				entityID = *row.EntityID
			}
			var errMsg any
			if row.ErrorMessage != "" {
				errMsg = row.ErrorMessage
			}
			ib = ib.Values(
				entityID, string(row.RawJSON), row.SourceSystem, row.BatchID,
				string(row.Domain), row.DataSizeBytes, string(row.Status), errMsg,
			)
		}

		query, args, err := ib.ToSql()
		if err != nil {
			return total, fmt.Errorf("build insert for %s: %w", d, err)
		}

		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("save rows to %s: %w", d.Table(), err)
		}

		n, _ := res.RowsAffected()
		total += n
	}

	return total, nil
}

// CountByStatus returns how many rows a batch landed per processing status.
func (r *Repository) CountByStatus(ctx context.Context, d ingest.Domain, batchID string) (map[ingest.RowStatus]int64, error) {
	if d.Table() == "" {
		return nil, fmt.Errorf("unknown domain %q", d)
	}

	query, args, err := sq.
		Select("processing_status", "COUNT(*)").
		From(d.Table()).
		Where(sq.Eq{"batch_id": batchID}).
		GroupBy("processing_status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query for %s: %w", d, err)
	}

	qrows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count rows for %s: %w", d, err)
	}
	defer func() { _ = qrows.Close() }()

	counts := make(map[ingest.RowStatus]int64)
	for qrows.Next() {
		var status string
		var n int64
		if err := qrows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[ingest.RowStatus(status)] = n
	}

	return counts, qrows.Err()
}
