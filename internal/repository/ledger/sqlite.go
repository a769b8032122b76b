package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/storelake/fakestore-etl/internal/ledger"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Start(ctx context.Context, e *domain.Entry) error {
	const query = `INSERT INTO ingestion_log (batch_id, source_system, domain, status)
		VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.BatchID, e.SourceSystem, e.Domain, string(domain.StatusInProgress),
	)
	if err != nil {
		return fmt.Errorf("start ledger entry: %w", err)
	}

	e.Status = domain.StatusInProgress
	e.StartTime = time.Now().UTC()
	return nil
}

// Finish transitions an IN_PROGRESS entry to a terminal status. The guard
// on the current status makes a second transition an error rather than an
// overwrite.
func (r *Repository) Finish(ctx context.Context, batchID string, status domain.Status, errMsg string) error {
	if status != domain.StatusSuccess && status != domain.StatusFailed {
		return fmt.Errorf("finish ledger entry: %q is not a terminal status", status)
	}

	const query = `UPDATE ingestion_log
		SET status = ?, end_time = strftime('%Y-%m-%dT%H:%M:%SZ', 'now'), error_message = ?
		WHERE batch_id = ? AND status = 'IN_PROGRESS'`

	var msg any
	if errMsg != "" {
		msg = errMsg
	}

	res, err := r.db.ExecContext(ctx, query, string(status), msg, batchID)
	if err != nil {
		return fmt.Errorf("finish ledger entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish ledger entry: batch %s not found or already terminal", batchID)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, batchID string) (*domain.Entry, error) {
	const query = `SELECT batch_id, source_system, domain, status, start_time, end_time, error_message
		FROM ingestion_log WHERE batch_id = ?`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, batchID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

func (r *Repository) List(ctx context.Context, dom string, status domain.Status) ([]domain.Entry, error) {
	query := `SELECT batch_id, source_system, domain, status, start_time, end_time, error_message
		FROM ingestion_log WHERE 1=1`

	var args []any
	if dom != "" {
		query += " AND domain = ?"
		args = append(args, dom)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY start_time DESC, batch_id LIMIT 100"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, *e)
	}

	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*domain.Entry, error) {
	e := &domain.Entry{}
	var status, startStr string
	var endStr, errMsg sql.NullString

	if err := s.Scan(&e.BatchID, &e.SourceSystem, &e.Domain, &status, &startStr, &endStr, &errMsg); err != nil {
		return nil, err
	}

	e.Status = domain.Status(status)
	e.StartTime, _ = time.Parse(time.RFC3339, startStr)
	if endStr.Valid {
		t, _ := time.Parse(time.RFC3339, endStr.String)
		e.EndTime = &t
	}
	if errMsg.Valid {
		e.Error = errMsg.String
	}
	return e, nil
}
