// Package etlerror defines the closed error taxonomy of the ingestion
// pipeline. Messages render as "KIND: detail" so values stored in the
// bronze and ledger tables stay stable across releases.
package etlerror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindFetch     Kind = "FETCH"
	KindRowBuild  Kind = "ROW_BUILD"
	KindBulkWrite Kind = "BULK_WRITE"
	KindLedger    Kind = "LEDGER"
)

type Error struct {
	kind   Kind
	detail string
	cause  error
}

func New(kind Kind, detail string) *Error {
	return &Error{kind: kind, detail: detail}
}

func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{kind: kind, detail: detail, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.detail)
}

func (e *Error) Kind() Kind    { return e.kind }
func (e *Error) Unwrap() error { return e.cause }

// KindOf returns the kind of the first *Error in err's chain, or "" when
// the chain carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ""
}
