package documents

import "context"

// DocumentsRepo defines persistence operations for documents.
//
// GetByID does not filter by user so callers can tell a missing document
// apart from one owned by somebody else.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	Exists(ctx context.Context, documentID string) (bool, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error)
	Delete(ctx context.Context, documentID string) (bool, error)
}
