package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSourceSystem identifies the upstream provider stamped on every
// bronze row and ledger entry.
const DefaultSourceSystem = "fakestoreapi"

// Domain identifies one upstream collection. The set is closed: table,
// identifier column, and endpoint path come from the lookup below and are
// never built from caller input.
type Domain string

const (
	DomainProducts Domain = "products"
	DomainUsers    Domain = "users"
	DomainCarts    Domain = "carts"
)

type target struct {
	table    string
	idColumn string
	endpoint string
}

var targets = map[Domain]target{
	DomainProducts: {table: "bronze_products", idColumn: "api_product_id", endpoint: "/products"},
	DomainUsers:    {table: "bronze_users", idColumn: "api_user_id", endpoint: "/users"},
	DomainCarts:    {table: "bronze_carts", idColumn: "api_cart_id", endpoint: "/carts"},
}

// Domains returns every known domain in a stable order.
func Domains() []Domain {
	return []Domain{DomainProducts, DomainUsers, DomainCarts}
}

// ParseDomain validates a caller-supplied domain name.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := targets[d]; !ok {
		return "", fmt.Errorf("unknown domain %q", s)
	}
	return d, nil
}

// Table returns the bronze landing table, or "" for an unknown domain.
func (d Domain) Table() string { return targets[d].table }

// IDColumn returns the per-domain entity identifier column.
func (d Domain) IDColumn() string { return targets[d].idColumn }

// Endpoint returns the upstream path serving the domain's collection.
func (d Domain) Endpoint() string { return targets[d].endpoint }

type RowStatus string

const (
	RowStatusSuccess RowStatus = "success"
	RowStatusFailed  RowStatus = "failed"
)

// Row is one bronze landing record. Every upstream record that passes the
// incremental filter produces exactly one Row, whether or not it was usable.
type Row struct {
	EntityID      *int64
	RawJSON       []byte
	SourceSystem  string
	BatchID       string
	Domain        Domain
	DataSizeBytes int64
	Status        RowStatus
	ErrorMessage  string // empty unless Status is failed
}

// Summary reports one batch's outcome. Zero rows with a nil error means
// there was no new upstream data.
type Summary struct {
	Domain  Domain `json:"domain"`
	Fetched int    `json:"fetched"`
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
}

// entityID extracts the integer identifier from a raw upstream record.
// Accepts JSON numbers and numeric strings. Records with a missing or
// non-numeric identifier report ok=false: the incremental filter counts
// them as new and the row builder lands them as failed rows, so nothing
// is ever silently excluded.
func entityID(raw json.RawMessage) (int64, bool) {
	var probe struct {
		ID any `json:"id"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&probe); err != nil {
		return 0, false
	}
	switch v := probe.ID.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
