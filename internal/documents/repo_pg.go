package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, user_id, file_name, mime_type, size_bytes, storage_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID regardless of owner.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_key, created_at
FROM documents
WHERE id = $1
LIMIT 1`
	var doc Document
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageKey,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// Exists reports whether a document row is present, without loading it.
func (r *PGRepo) Exists(ctx context.Context, documentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, documentID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_key, created_at
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.FileName,
			&doc.MimeType,
			&doc.SizeBytes,
			&doc.StorageKey,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes a document row. The analyses row, if any, goes with it via
// the foreign key cascade. Returns whether a row was actually deleted.
func (r *PGRepo) Delete(ctx context.Context, documentID string) (bool, error) {
	const query = `DELETE FROM documents WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, documentID)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
