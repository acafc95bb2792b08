package analyses

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"jobsearch-backend/internal/documents"
	"jobsearch-backend/internal/llm"
)

type memStore struct {
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (s *memStore) Save(ctx context.Context, userId, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userId + "/" + fileName
	s.blobs[key] = data
	return key, int64(len(data)), "text/plain", nil
}

func (s *memStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.blobs[storageKey]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(ctx context.Context, storageKey string) error {
	delete(s.blobs, storageKey)
	return nil
}

type countingAnalyzer struct {
	calls  int
	result llm.Result
	err    error
}

func (a *countingAnalyzer) Analyze(ctx context.Context, resumeText string) (llm.Result, error) {
	a.calls++
	return a.result, a.err
}

func (a *countingAnalyzer) IsConfigured() bool { return true }

func staticResult() llm.Result {
	return llm.Result{
		Skills: []llm.SkillCategory{
			{Name: "Programming Languages", Skills: []string{"Go"}},
		},
		Summary:     "Backend engineer.",
		JobKeywords: []string{"Backend Engineer", "Go Developer", "Platform Engineer"},
	}
}

const resumeBody = "Backend engineer with eight years of experience building Go services on AWS and Postgres."

func setupServiceWithDoc(t *testing.T, analyzer ResumeAnalyzer) (*Service, documents.Document) {
	t.Helper()
	repo := NewMemoryRepo()
	docsSvc := &documents.Service{
		Store:    newMemStore(),
		Repo:     documents.NewMemoryRepo(),
		Analyses: repo,
	}
	doc, err := docsSvc.Upload(context.Background(), "user-1", "resume.txt", "text/plain", int64(len(resumeBody)), strings.NewReader(resumeBody))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return &Service{Docs: docsSvc, Repo: repo, Analyzer: analyzer}, doc
}

func TestGetOrCreate_SecondCallServedFromRecord(t *testing.T) {
	analyzer := &countingAnalyzer{result: staticResult()}
	svc, doc := setupServiceWithDoc(t, analyzer)

	first, cached, err := svc.GetOrCreate(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if cached {
		t.Fatal("first call must not be cached")
	}

	second, cached, err := svc.GetOrCreate(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !cached {
		t.Fatal("second call must be cached")
	}
	if analyzer.calls != 1 {
		t.Fatalf("analyzer must run once, ran %d times", analyzer.calls)
	}
	if first.ID != second.ID {
		t.Fatalf("both calls must return the same record: %s vs %s", first.ID, second.ID)
	}
}

func TestGetOrCreate_DocumentNotFound(t *testing.T) {
	analyzer := &countingAnalyzer{result: staticResult()}
	svc, _ := setupServiceWithDoc(t, analyzer)

	_, _, err := svc.GetOrCreate(context.Background(), "user-1", "missing-doc")
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected documents.ErrNotFound, got: %v", err)
	}
	if analyzer.calls != 0 {
		t.Fatalf("analyzer must not run for missing documents, ran %d times", analyzer.calls)
	}
}

func TestGetOrCreate_ForbiddenForOtherUser(t *testing.T) {
	analyzer := &countingAnalyzer{result: staticResult()}
	svc, doc := setupServiceWithDoc(t, analyzer)

	_, _, err := svc.GetOrCreate(context.Background(), "intruder", doc.ID)
	if !errors.Is(err, documents.ErrForbidden) {
		t.Fatalf("expected documents.ErrForbidden, got: %v", err)
	}
	if analyzer.calls != 0 {
		t.Fatalf("analyzer must not run for forbidden documents, ran %d times", analyzer.calls)
	}
}

func TestGetOrCreate_FailureLeavesNoRecord(t *testing.T) {
	analyzer := &countingAnalyzer{err: &llm.RetryableError{Err: errors.New("upstream down")}}
	svc, doc := setupServiceWithDoc(t, analyzer)

	_, _, err := svc.GetOrCreate(context.Background(), "user-1", doc.ID)
	if !llm.IsRetryable(err) {
		t.Fatalf("expected retryable error, got: %v", err)
	}

	// A failed run must not poison the store: the next call runs again.
	analyzer.err = nil
	analyzer.result = staticResult()
	_, cached, err := svc.GetOrCreate(context.Background(), "user-1", doc.ID)
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if cached {
		t.Fatal("retry after failure must run the analyzer")
	}
	if analyzer.calls != 2 {
		t.Fatalf("expected 2 analyzer runs, got %d", analyzer.calls)
	}
}

func TestDeleteDocumentRemovesAnalysis(t *testing.T) {
	analyzer := &countingAnalyzer{result: staticResult()}
	svc, doc := setupServiceWithDoc(t, analyzer)

	if _, _, err := svc.GetOrCreate(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if err := svc.Docs.Delete(context.Background(), "user-1", doc.ID); err != nil {
		t.Fatalf("delete document: %v", err)
	}
	if _, err := svc.Repo.GetByDocument(context.Background(), "user-1", doc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("analysis must be gone after document delete, got: %v", err)
	}
}
