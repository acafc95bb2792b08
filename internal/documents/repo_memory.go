package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // documentID -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Create stores a document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by ID regardless of owner.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// Exists reports whether a document is present.
func (r *MemoryRepo) Exists(ctx context.Context, documentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.data[documentID]
	return ok, nil
}

// ListByUser returns documents for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	var docs []Document
	for _, doc := range r.data {
		if doc.UserID == userId {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// Delete removes a document. Returns whether it existed.
func (r *MemoryRepo) Delete(ctx context.Context, documentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[documentID]
	delete(r.data, documentID)
	return ok, nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
