package listings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func seedSource() *MemorySource {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	src := NewMemorySource()
	for i := 0; i < 25; i++ {
		title := "Backend Engineer"
		if i%2 == 1 {
			title = "Data Analyst"
		}
		src.Add(Listing{
			ID:              "job-" + string(rune('a'+i)),
			Title:           title,
			Company:         "Acme",
			Location:        "Berlin",
			WorkArrangement: "remote",
			MatchScore:      float64(i) / 25,
			PostedAt:        base.Add(time.Duration(i) * time.Hour),
		})
	}
	return src
}

func newListingsRouter(etl, curated Source) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(etl, curated).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doSearch(t *testing.T, router *gin.Engine, path string) (int, Page) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var page Page
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec.Code, page
}

func TestJobsEndpoint_Pagination(t *testing.T) {
	router := newListingsRouter(seedSource(), NewMemorySource())

	code, page := doSearch(t, router, "/api/v1/jobs?page=2&limit=10")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if page.Total != 25 || page.Page != 2 || page.Limit != 10 || page.TotalPages != 3 {
		t.Fatalf("unexpected envelope: %+v", page)
	}
	if len(page.Data) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(page.Data))
	}
}

func TestJobsEndpoint_LimitClamped(t *testing.T) {
	router := newListingsRouter(seedSource(), NewMemorySource())

	code, page := doSearch(t, router, "/api/v1/jobs?limit=1000")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if page.Limit != maxLimit {
		t.Fatalf("limit must clamp to %d, got %d", maxLimit, page.Limit)
	}

	code, page = doSearch(t, router, "/api/v1/jobs?limit=-5&page=0")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if page.Limit != defaultLimit || page.Page != 1 {
		t.Fatalf("expected defaults, got limit=%d page=%d", page.Limit, page.Page)
	}
}

func TestJobsEndpoint_KeywordFilter(t *testing.T) {
	router := newListingsRouter(seedSource(), NewMemorySource())

	code, page := doSearch(t, router, "/api/v1/jobs?q=data+analyst")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if page.Total != 12 {
		t.Fatalf("expected 12 analyst listings, got %d", page.Total)
	}
	for _, l := range page.Data {
		if l.Title != "Data Analyst" {
			t.Fatalf("keyword filter leaked: %+v", l)
		}
	}
}

func TestJobsEndpoint_SortByScore(t *testing.T) {
	router := newListingsRouter(seedSource(), NewMemorySource())

	code, page := doSearch(t, router, "/api/v1/jobs?sortBy=matchScore&order=desc&limit=5")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	for i := 1; i < len(page.Data); i++ {
		if page.Data[i].MatchScore > page.Data[i-1].MatchScore {
			t.Fatalf("not sorted desc by score: %+v", page.Data)
		}
	}
}

func TestJobsEndpoint_BadParams(t *testing.T) {
	router := newListingsRouter(seedSource(), NewMemorySource())

	for _, path := range []string{
		"/api/v1/jobs?page=abc",
		"/api/v1/jobs?limit=abc",
		"/api/v1/jobs?minScore=abc",
		"/api/v1/jobs?postedAfter=05-2026",
		"/api/v1/jobs?postedOn=yesterday",
		"/api/v1/jobs?order=sideways",
		"/api/v1/jobs?sortBy=nope",
	} {
		code, _ := doSearch(t, router, path)
		if code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, code)
		}
	}
}

func TestJobsEndpoint_PostedOnFilter(t *testing.T) {
	router := newListingsRouter(seedSource(), NewMemorySource())

	code, page := doSearch(t, router, "/api/v1/jobs?postedOn=2026-05-01")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if page.Total != 24 {
		t.Fatalf("expected 24 listings posted on 2026-05-01, got %d", page.Total)
	}

	code, page = doSearch(t, router, "/api/v1/jobs?postedOn=2026-05-02")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if page.Total != 1 {
		t.Fatalf("expected 1 listing posted on 2026-05-02, got %d", page.Total)
	}
}

func TestJobsEndpoint_GetByID(t *testing.T) {
	router := newListingsRouter(seedSource(), NewMemorySource())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-a", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var listing Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if listing.ID != "job-a" {
		t.Fatalf("expected job-a, got %+v", listing)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs/no-such-job", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown listing, got %d", rec.Code)
	}
}

func TestCuratedEndpoint_SeparateSource(t *testing.T) {
	curated := NewMemorySource(Listing{ID: "cur-1", Title: "Staff Engineer", PostedAt: time.Now()})
	router := newListingsRouter(seedSource(), curated)

	code, page := doSearch(t, router, "/api/v1/curated-jobs")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if page.Total != 1 || page.Data[0].ID != "cur-1" {
		t.Fatalf("curated endpoint must read the curated source: %+v", page)
	}
}
