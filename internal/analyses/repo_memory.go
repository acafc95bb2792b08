package analyses

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]Record // userId + "\x00" + documentID -> record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Record),
	}
}

func key(userId, documentID string) string {
	return userId + "\x00" + documentID
}

// Insert stores the record unless one already exists for the pair.
func (r *MemoryRepo) Insert(ctx context.Context, rec Record) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(rec.UserID, rec.DocumentID)
	if existing, ok := r.data[k]; ok {
		return existing, false, nil
	}
	r.data[k] = rec
	return rec, true, nil
}

// GetByDocument returns the stored analysis for a user's document.
func (r *MemoryRepo) GetByDocument(ctx context.Context, userId, documentID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[key(userId, documentID)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// DeleteByDocument removes any analysis for the document, across users.
func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, rec := range r.data {
		if rec.DocumentID == documentID {
			delete(r.data, k)
		}
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
