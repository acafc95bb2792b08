package analyses

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"jobsearch-backend/internal/documents"
	"jobsearch-backend/internal/extract"
	"jobsearch-backend/internal/llm"
	"jobsearch-backend/internal/shared/metrics"
	"jobsearch-backend/internal/shared/telemetry"
)

// ResumeAnalyzer runs the model call with validation and retry.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, resumeText string) (llm.Result, error)
	IsConfigured() bool
}

// Service contains the analysis orchestration logic.
type Service struct {
	Docs     *documents.Service
	Repo     Repo
	Analyzer ResumeAnalyzer
}

// GetOrCreate returns the stored analysis for a document, running the full
// pipeline only when none exists yet. The cached bool reports whether the
// record was served without calling the model.
func (s *Service) GetOrCreate(ctx context.Context, userId, documentID string) (Record, bool, error) {
	doc, err := s.Docs.GetOwned(ctx, userId, documentID)
	if err != nil {
		return Record{}, false, err
	}

	if existing, err := s.Repo.GetByDocument(ctx, userId, documentID); err == nil {
		metrics.IncAnalysisCacheHit()
		return existing, true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Record{}, false, err
	}

	metrics.IncAnalysisStarted()
	started := time.Now()

	rec, err := s.analyze(ctx, userId, doc)
	if err != nil {
		metrics.IncAnalysisFailed()
		return Record{}, false, err
	}

	winner, created, err := s.Repo.Insert(ctx, rec)
	if err != nil {
		metrics.IncAnalysisFailed()
		return Record{}, false, err
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))
	if !created {
		telemetry.Info("analysis race lost, returning winner", map[string]any{
			"documentId": documentID,
			"userId":     userId,
		})
	}
	return winner, !created, nil
}

func (s *Service) analyze(ctx context.Context, userId string, doc documents.Document) (Record, error) {
	raw, err := s.Docs.OpenBytes(ctx, doc)
	if err != nil {
		return Record{}, err
	}

	text, err := extract.TextFromBytes(ctx, raw, doc.MimeType, doc.FileName)
	if err != nil {
		return Record{}, err
	}

	result, err := s.Analyzer.Analyze(ctx, text)
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:          uuid.NewString(),
		UserID:      userId,
		DocumentID:  doc.ID,
		Skills:      result.Skills,
		Summary:     result.Summary,
		JobKeywords: result.JobKeywords,
		AnalyzedAt:  time.Now().UTC(),
	}, nil
}

// GetRecord returns the stored analysis without triggering a run.
func (s *Service) GetRecord(ctx context.Context, userId, documentID string) (Record, error) {
	if _, err := s.Docs.GetOwned(ctx, userId, documentID); err != nil {
		return Record{}, err
	}
	return s.Repo.GetByDocument(ctx, userId, documentID)
}

// AnalysisForDocument implements the lookup the documents handler embeds in
// its detail response.
func (s *Service) AnalysisForDocument(ctx context.Context, userId, documentID string) (any, bool, error) {
	rec, err := s.Repo.GetByDocument(ctx, userId, documentID)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return toResponse(rec, true), true, nil
}
