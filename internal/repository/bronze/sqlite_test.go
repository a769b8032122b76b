package bronze

import (
	"context"
	"strconv"
	"testing"

	"github.com/storelake/fakestore-etl/internal/ingest"
	"github.com/storelake/fakestore-etl/internal/platform/sqlite"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func successRow(id int64, batchID string, d ingest.Domain) ingest.Row {
	return ingest.Row{
		EntityID:      &id,
		RawJSON:       []byte(`{"id":` + strconv.FormatInt(id, 10) + `}`),
		SourceSystem:  "fakestoreapi",
		BatchID:       batchID,
		Domain:        d,
		DataSizeBytes: 8,
		Status:        ingest.RowStatusSuccess,
	}
}

func TestLastEntityID_EmptyTable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)

	lastID, err := repo.LastEntityID(context.Background(), ingest.DomainProducts)
	if err != nil {
		t.Fatalf("empty table must not fail: %v", err)
	}
	if lastID != 0 {
		t.Errorf("expected 0, got %d", lastID)
	}
}

func TestLastEntityID_UnknownDomain(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)

	if _, err := repo.LastEntityID(context.Background(), ingest.Domain("orders")); err == nil {
		t.Fatal("expected error for unknown domain")
	}
}

func TestSaveRows_AndHighWaterMark(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	rows := []ingest.Row{
		successRow(1, "batch-1", ingest.DomainProducts),
		successRow(5, "batch-1", ingest.DomainProducts),
		successRow(3, "batch-1", ingest.DomainProducts),
	}

	n, err := repo.SaveRows(ctx, ingest.DomainProducts, rows)
	if err != nil {
		t.Fatalf("save rows: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows written, got %d", n)
	}

	lastID, err := repo.LastEntityID(ctx, ingest.DomainProducts)
	if err != nil {
		t.Fatal(err)
	}
	if lastID != 5 {
		t.Errorf("expected high-water mark 5, got %d", lastID)
	}

	// Other domains are untouched.
	lastID, err = repo.LastEntityID(ctx, ingest.DomainUsers)
	if err != nil {
		t.Fatal(err)
	}
	if lastID != 0 {
		t.Errorf("expected 0 for users, got %d", lastID)
	}
}

func TestSaveRows_FailedRowWithNullID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	rows := []ingest.Row{
		{
			RawJSON:       []byte(`{"title":"no id"}`),
			SourceSystem:  "fakestoreapi",
			BatchID:       "batch-1",
			Domain:        ingest.DomainCarts,
			DataSizeBytes: 17,
			Status:        ingest.RowStatusFailed,
			ErrorMessage:  `ROW_BUILD: missing or non-numeric identifier field "id"`,
		},
	}

	if _, err := repo.SaveRows(ctx, ingest.DomainCarts, rows); err != nil {
		t.Fatalf("save rows: %v", err)
	}

	var entityID any
	var status, errMsg string
	err := db.QueryRowContext(ctx,
		`SELECT api_cart_id, processing_status, error_message FROM bronze_carts WHERE batch_id = ?`,
		"batch-1",
	).Scan(&entityID, &status, &errMsg)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	if entityID != nil {
		t.Errorf("expected NULL entity id, got %v", entityID)
	}
	if status != "failed" {
		t.Errorf("expected failed, got %s", status)
	}
	if errMsg == "" {
		t.Error("expected a non-empty error message")
	}

	// A failed row with no usable id leaves the high-water mark alone.
	lastID, err := repo.LastEntityID(ctx, ingest.DomainCarts)
	if err != nil {
		t.Fatal(err)
	}
	if lastID != 0 {
		t.Errorf("expected 0, got %d", lastID)
	}
}

func TestSaveRows_DuplicateEntityIDsAllowed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	rows := []ingest.Row{
		successRow(7, "batch-1", ingest.DomainUsers),
		successRow(7, "batch-1", ingest.DomainUsers),
	}

	n, err := repo.SaveRows(ctx, ingest.DomainUsers, rows)
	if err != nil {
		t.Fatalf("save rows: %v", err)
	}
	if n != 2 {
		t.Errorf("upstream duplicates must both land, got %d rows", n)
	}
}

func TestSaveRows_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)

	n, err := repo.SaveRows(context.Background(), ingest.DomainProducts, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	rows := []ingest.Row{
		successRow(1, "batch-1", ingest.DomainProducts),
		successRow(2, "batch-1", ingest.DomainProducts),
		{
			RawJSON: []byte(`{}`), SourceSystem: "fakestoreapi", BatchID: "batch-1",
			Domain: ingest.DomainProducts, DataSizeBytes: 2,
			Status: ingest.RowStatusFailed, ErrorMessage: "ROW_BUILD: missing identifier",
		},
		successRow(9, "batch-2", ingest.DomainProducts),
	}
	if _, err := repo.SaveRows(ctx, ingest.DomainProducts, rows); err != nil {
		t.Fatal(err)
	}

	counts, err := repo.CountByStatus(ctx, ingest.DomainProducts, "batch-1")
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	if counts[ingest.RowStatusSuccess] != 2 {
		t.Errorf("expected 2 success, got %d", counts[ingest.RowStatusSuccess])
	}
	if counts[ingest.RowStatusFailed] != 1 {
		t.Errorf("expected 1 failed, got %d", counts[ingest.RowStatusFailed])
	}
}
