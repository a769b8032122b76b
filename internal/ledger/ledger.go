package ledger

import (
	"context"
	"time"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
)

// ParseStatus validates a caller-supplied status filter.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusInProgress, StatusSuccess, StatusFailed:
		return Status(s), true
	case "":
		return "", true
	}
	return "", false
}

// Entry is the audit record for one ingestion batch. It is created
// IN_PROGRESS before the engine runs and moved to a terminal status
// exactly once; entries are never deleted or re-opened.
type Entry struct {
	BatchID      string     `json:"batchId"`
	SourceSystem string     `json:"sourceSystem"`
	Domain       string     `json:"domain"`
	Status       Status     `json:"status"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Error        string     `json:"error,omitempty"`
}

type Repository interface {
	// Start inserts e with status IN_PROGRESS and a start time of now.
	Start(ctx context.Context, e *Entry) error
	// Finish moves the entry to a terminal status and stamps end_time.
	// It fails if the entry is missing or already terminal.
	Finish(ctx context.Context, batchID string, status Status, errMsg string) error
	// Get returns the entry, or nil when no entry matches.
	Get(ctx context.Context, batchID string) (*Entry, error)
	List(ctx context.Context, domain string, status Status) ([]Entry, error)
}
