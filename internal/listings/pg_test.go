package listings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func listingColumns() []string {
	return []string{
		"id", "title", "company", "location", "description",
		"employment_type", "work_arrangement", "platform",
		"match_score", "url", "posted_at",
	}
}

func TestPGSourceSearch_DefaultQuery(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	src := NewETLSource(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM jobs_etl`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	mock.ExpectQuery(`FROM jobs_etl ORDER BY posted_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(listingColumns()).
			AddRow("job-1", "Backend Engineer", "Acme", "Berlin", "Go services",
				"full-time", "remote", "boardA", 0.9, "https://acme.example/1", time.Now()))

	page, err := src.Search(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.Total != 42 || page.Page != 1 || page.Limit != 20 {
		t.Fatalf("unexpected envelope: %+v", page)
	}
	if page.TotalPages != 3 {
		t.Fatalf("totalPages = %d, want 3", page.TotalPages)
	}
	if len(page.Data) != 1 || page.Data[0].Title != "Backend Engineer" {
		t.Fatalf("unexpected rows: %+v", page.Data)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGSourceSearch_KeywordAndFilters(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	src := NewCuratedSource(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM jobs_curated WHERE \(job_title ILIKE \$1 OR company_name ILIKE \$1 OR summary ILIKE \$1\) AND work_mode = \$2`).
		WithArgs("%golang%", "remote").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(`FROM jobs_curated WHERE .+ ORDER BY relevance_score ASC LIMIT \$3 OFFSET \$4`).
		WithArgs("%golang%", "remote", 10, 10).
		WillReturnRows(sqlmock.NewRows(listingColumns()))

	page, err := src.Search(context.Background(), Query{
		Keyword:         "golang",
		WorkArrangement: "remote",
		SortBy:          "matchScore",
		Page:            2,
		Limit:           10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Data) != 0 || page.Total != 0 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGSourceGetByID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	src := NewETLSource(db)

	mock.ExpectQuery(`FROM jobs_etl WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(sqlmock.NewRows(listingColumns()).
			AddRow("job-1", "Backend Engineer", "Acme", "Berlin", "Go services",
				"full-time", "remote", "boardA", 0.9, "https://acme.example/1", time.Now()))

	listing, found, err := src.GetByID(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !found || listing.ID != "job-1" {
		t.Fatalf("unexpected result: found=%v listing=%+v", found, listing)
	}

	mock.ExpectQuery(`FROM jobs_etl WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(listingColumns()))

	_, found, err = src.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found {
		t.Fatal("expected not found for empty result")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGSourceSearch_SortAllowlist(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	src := NewETLSource(db)
	_, err = src.Search(context.Background(), Query{SortBy: "posted_at; DROP TABLE jobs_etl"})
	if !errors.Is(err, ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got: %v", err)
	}
}
