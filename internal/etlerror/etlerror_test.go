package etlerror

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Format(t *testing.T) {
	e := New(KindRowBuild, "missing identifier")
	if got := e.Error(); got != "ROW_BUILD: missing identifier" {
		t.Errorf("unexpected message: %s", got)
	}

	wrapped := Wrap(KindFetch, "get /products", errors.New("connection refused"))
	if got := wrapped.Error(); got != "FETCH: get /products: connection refused" {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestKindOf(t *testing.T) {
	base := Wrap(KindBulkWrite, "insert", errors.New("disk full"))
	chained := fmt.Errorf("ingest products: %w", base)

	if got := KindOf(chained); got != KindBulkWrite {
		t.Errorf("expected BULK_WRITE, got %s", got)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty kind, got %s", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("expected empty kind for nil, got %s", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	e := Wrap(KindFetch, "get /users", cause)
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}
