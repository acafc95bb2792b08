package analyses

import "context"

// Repo defines persistence operations for analysis records.
//
// Insert is the only write path and must be safe under concurrent callers:
// when two goroutines race on the same (user, document) pair, exactly one
// record survives and both callers see it. The bool reports whether this
// call created the record.
type Repo interface {
	Insert(ctx context.Context, rec Record) (Record, bool, error)
	GetByDocument(ctx context.Context, userId, documentID string) (Record, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
