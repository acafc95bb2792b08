package analyses

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"jobsearch-backend/internal/llm"
)

func newTestRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	h := NewHandler(svc)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestAnalyzeEndpoint_Success(t *testing.T) {
	analyzer := &countingAnalyzer{result: staticResult()}
	svc, doc := setupServiceWithDoc(t, analyzer)
	router := newTestRouter(svc, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+doc.ID+"/analyze", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DocumentID != doc.ID {
		t.Fatalf("unexpected documentId: %s", resp.DocumentID)
	}
	if len(resp.JobKeywords) < 3 {
		t.Fatalf("expected at least 3 keywords: %v", resp.JobKeywords)
	}
	if resp.Cached {
		t.Fatal("first analysis must not be cached")
	}
}

func TestAnalyzeEndpoint_UpstreamDownMapsTo503(t *testing.T) {
	analyzer := &countingAnalyzer{err: &llm.RetryableError{Err: errors.New("upstream down")}}
	svc, doc := setupServiceWithDoc(t, analyzer)
	router := newTestRouter(svc, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+doc.ID+"/analyze", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestAnalyzeEndpoint_NotConfiguredMapsTo503(t *testing.T) {
	analyzer := &countingAnalyzer{err: llm.ErrNotConfigured}
	svc, doc := setupServiceWithDoc(t, analyzer)
	router := newTestRouter(svc, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+doc.ID+"/analyze", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestAnalyzeEndpoint_OtherUsersDocumentMapsTo403(t *testing.T) {
	analyzer := &countingAnalyzer{result: staticResult()}
	svc, doc := setupServiceWithDoc(t, analyzer)
	router := newTestRouter(svc, "intruder")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+doc.ID+"/analyze", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestGetAnalysisEndpoint_MissingMapsTo404(t *testing.T) {
	analyzer := &countingAnalyzer{result: staticResult()}
	svc, doc := setupServiceWithDoc(t, analyzer)
	router := newTestRouter(svc, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+doc.ID+"/analysis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAnalyzeEndpoint_ShortResumeMapsTo422(t *testing.T) {
	analyzer := &countingAnalyzer{err: llm.ErrInvalidInput}
	svc, doc := setupServiceWithDoc(t, analyzer)
	router := newTestRouter(svc, "user-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+doc.ID+"/analyze", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
