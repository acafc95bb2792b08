package documents

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"jobsearch-backend/internal/shared/metrics"
	"jobsearch-backend/internal/shared/storage/object"
	"jobsearch-backend/internal/shared/telemetry"
)

// AnalysesCleaner removes analysis records tied to a document. Postgres does
// this through the foreign key cascade; the in-memory repos need an explicit
// call.
type AnalysesCleaner interface {
	DeleteByDocument(ctx context.Context, documentID string) error
}

// Service contains business logic for documents.
type Service struct {
	Store    object.ObjectStore
	Repo     DocumentsRepo
	Analyses AnalysesCleaner
}

// Upload validates the file, saves it to object storage, and records the
// document. Validation failures never touch storage.
func (s *Service) Upload(ctx context.Context, userId, fileName, declaredMime string, sizeBytes int64, r io.Reader) (Document, error) {
	mimeType := ResolveMimeType(declaredMime, fileName)
	if err := ValidateUpload(fileName, mimeType, sizeBytes); err != nil {
		metrics.IncUploadRejected()
		return Document{}, err
	}

	storageKey, size, _, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userId,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	metrics.IncUpload()
	return doc, nil
}

// GetOwned fetches a document and enforces ownership.
func (s *Service) GetOwned(ctx context.Context, userId, documentID string) (Document, error) {
	if userId == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.UserID != userId {
		return Document{}, ErrForbidden
	}
	return doc, nil
}

// Exists reports whether a document is stored, regardless of owner.
func (s *Service) Exists(ctx context.Context, documentID string) (bool, error) {
	if documentID == "" {
		return false, ErrInvalidInput
	}
	return s.Repo.Exists(ctx, documentID)
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// OpenBytes reads the stored blob for a document.
func (s *Service) OpenBytes(ctx context.Context, doc Document) ([]byte, error) {
	body, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// Delete removes a document, its blob, and any analysis. Deleting a document
// that is already gone succeeds, so retried deletes are safe.
func (s *Service) Delete(ctx context.Context, userId, documentID string) error {
	if userId == "" || documentID == "" {
		return ErrInvalidInput
	}

	doc, err := s.Repo.GetByID(ctx, documentID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if doc.UserID != userId {
		return ErrForbidden
	}

	if s.Analyses != nil {
		if err := s.Analyses.DeleteByDocument(ctx, documentID); err != nil {
			return err
		}
	}

	if _, err := s.Repo.Delete(ctx, documentID); err != nil {
		return err
	}

	// Blob removal is best effort; the record is already gone.
	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
		telemetry.Warn("document blob delete failed", map[string]any{
			"documentId": documentID,
			"error":      err.Error(),
		})
	}
	return nil
}
