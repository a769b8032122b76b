package ingest

import (
	"context"
	"encoding/json"
)

// BronzeRepository is the destination-table contract used by the Engine.
type BronzeRepository interface {
	// LastEntityID returns the highest identifier already ingested for the
	// domain, or 0 when the table is empty.
	LastEntityID(ctx context.Context, d Domain) (int64, error)
	// SaveRows lands rows in the domain's bronze table using batched
	// inserts and returns the number of rows written.
	SaveRows(ctx context.Context, d Domain, rows []Row) (int64, error)
}

// Fetcher retrieves the full current upstream collection for a domain, or
// fails. Pagination and rate limiting, if ever needed, stay behind this
// boundary.
type Fetcher interface {
	Fetch(ctx context.Context, d Domain) ([]json.RawMessage, error)
}
