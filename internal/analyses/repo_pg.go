package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Insert writes the record unless one already exists for (user, document).
// The unique constraint plus ON CONFLICT DO NOTHING makes the race between
// concurrent analyzers resolve to a single winner, which is then re-read.
func (r *PGRepo) Insert(ctx context.Context, rec Record) (Record, bool, error) {
	const query = `
INSERT INTO analyses (id, user_id, document_id, skills, summary, job_keywords, analyzed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id, document_id) DO NOTHING`

	skillsPayload, err := json.Marshal(rec.Skills)
	if err != nil {
		return Record{}, false, err
	}
	keywordsPayload, err := json.Marshal(rec.JobKeywords)
	if err != nil {
		return Record{}, false, err
	}

	res, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.DocumentID,
		skillsPayload,
		rec.Summary,
		keywordsPayload,
		rec.AnalyzedAt,
	)
	if err != nil {
		return Record{}, false, err
	}
	affected, _ := res.RowsAffected()
	if affected > 0 {
		return rec, true, nil
	}

	winner, err := r.GetByDocument(ctx, rec.UserID, rec.DocumentID)
	if err != nil {
		return Record{}, false, err
	}
	return winner, false, nil
}

// GetByDocument returns the stored analysis for a user's document.
func (r *PGRepo) GetByDocument(ctx context.Context, userId, documentID string) (Record, error) {
	const query = `
SELECT id, user_id, document_id, skills, summary, job_keywords, analyzed_at
FROM analyses
WHERE user_id = $1 AND document_id = $2
LIMIT 1`

	var rec Record
	var skillsRaw []byte
	var keywordsRaw []byte
	err := r.DB.QueryRowContext(ctx, query, userId, documentID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.DocumentID,
		&skillsRaw,
		&rec.Summary,
		&keywordsRaw,
		&rec.AnalyzedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}

	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &rec.Skills); err != nil {
			return Record{}, err
		}
	}
	if len(keywordsRaw) > 0 {
		if err := json.Unmarshal(keywordsRaw, &rec.JobKeywords); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

// DeleteByDocument removes any analysis for the document.
func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	const query = `DELETE FROM analyses WHERE document_id = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID)
	return err
}

var _ Repo = (*PGRepo)(nil)
