package listings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// columnMap binds the logical listing fields to one physical table. The ETL
// and curated tables carry the same information under different names, so a
// single query builder serves both.
type columnMap struct {
	table           string
	id              string
	title           string
	company         string
	location        string
	description     string
	employmentType  string
	workArrangement string
	platform        string
	matchScore      string
	url             string
	postedAt        string
}

var etlColumns = columnMap{
	table:           "jobs_etl",
	id:              "id",
	title:           "title",
	company:         "company",
	location:        "location",
	description:     "description",
	employmentType:  "employment_type",
	workArrangement: "work_arrangement",
	platform:        "platform",
	matchScore:      "match_score",
	url:             "url",
	postedAt:        "posted_at",
}

var curatedColumns = columnMap{
	table:           "jobs_curated",
	id:              "id",
	title:           "job_title",
	company:         "company_name",
	location:        "office_location",
	description:     "summary",
	employmentType:  "employment_type",
	workArrangement: "work_mode",
	platform:        "source_platform",
	matchScore:      "relevance_score",
	url:             "apply_url",
	postedAt:        "published_at",
}

// PGSource implements Source over one Postgres table.
type PGSource struct {
	db   *sql.DB
	cols columnMap
}

// NewETLSource reads from the pipeline-populated jobs_etl table.
func NewETLSource(db *sql.DB) *PGSource {
	return &PGSource{db: db, cols: etlColumns}
}

// NewCuratedSource reads from the hand-maintained jobs_curated table.
func NewCuratedSource(db *sql.DB) *PGSource {
	return &PGSource{db: db, cols: curatedColumns}
}

func (s *PGSource) sortColumn(key string) (string, bool) {
	switch key {
	case "postedAt":
		return s.cols.postedAt, true
	case "matchScore":
		return s.cols.matchScore, true
	case "title":
		return s.cols.title, true
	case "company":
		return s.cols.company, true
	}
	return "", false
}

// Search runs the filtered, sorted, paginated query.
func (s *PGSource) Search(ctx context.Context, q Query) (Page, error) {
	q = q.normalized()

	sortCol, ok := s.sortColumn(q.SortBy)
	if !ok {
		return Page{}, fmt.Errorf("%w: %s", ErrInvalidSort, q.SortBy)
	}

	where, args := s.buildWhere(q)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", s.cols.table, where)
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}
	offset := (q.Page - 1) * q.Limit

	selectQuery := fmt.Sprintf(
		"SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		s.cols.id, s.cols.title, s.cols.company, s.cols.location, s.cols.description,
		s.cols.employmentType, s.cols.workArrangement, s.cols.platform,
		s.cols.matchScore, s.cols.url, s.cols.postedAt,
		s.cols.table, where, sortCol, direction,
		len(args)+1, len(args)+2,
	)
	args = append(args, q.Limit, offset)

	rows, err := s.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := []Listing{}
	for rows.Next() {
		var l Listing
		if err := rows.Scan(
			&l.ID,
			&l.Title,
			&l.Company,
			&l.Location,
			&l.Description,
			&l.EmploymentType,
			&l.WorkArrangement,
			&l.Platform,
			&l.MatchScore,
			&l.URL,
			&l.PostedAt,
		); err != nil {
			return Page{}, err
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	return Page{
		Data:       items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages(total, q.Limit),
	}, nil
}

// GetByID fetches a single listing.
func (s *PGSource) GetByID(ctx context.Context, id string) (Listing, bool, error) {
	query := fmt.Sprintf(
		"SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1",
		s.cols.id, s.cols.title, s.cols.company, s.cols.location, s.cols.description,
		s.cols.employmentType, s.cols.workArrangement, s.cols.platform,
		s.cols.matchScore, s.cols.url, s.cols.postedAt,
		s.cols.table, s.cols.id,
	)

	var l Listing
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&l.ID,
		&l.Title,
		&l.Company,
		&l.Location,
		&l.Description,
		&l.EmploymentType,
		&l.WorkArrangement,
		&l.Platform,
		&l.MatchScore,
		&l.URL,
		&l.PostedAt,
	)
	if err == sql.ErrNoRows {
		return Listing{}, false, nil
	}
	if err != nil {
		return Listing{}, false, err
	}
	return l, true, nil
}

func (s *PGSource) buildWhere(q Query) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		pattern := "%" + kw + "%"
		args = append(args, pattern)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(%s ILIKE $%d OR %s ILIKE $%d OR %s ILIKE $%d)",
			s.cols.title, n, s.cols.company, n, s.cols.description, n))
	}
	if v := strings.TrimSpace(q.Location); v != "" {
		add(s.cols.location+" ILIKE $%d", "%"+v+"%")
	}
	if v := strings.TrimSpace(q.Company); v != "" {
		add(s.cols.company+" ILIKE $%d", "%"+v+"%")
	}
	if v := strings.TrimSpace(q.EmploymentType); v != "" {
		add(s.cols.employmentType+" = $%d", v)
	}
	if v := strings.TrimSpace(q.WorkArrangement); v != "" {
		add(s.cols.workArrangement+" = $%d", v)
	}
	if v := strings.TrimSpace(q.Platform); v != "" {
		add(s.cols.platform+" = $%d", v)
	}
	if q.MinScore > 0 {
		add(s.cols.matchScore+" >= $%d", q.MinScore)
	}
	if q.PostedAfter != nil {
		add(s.cols.postedAt+" >= $%d", *q.PostedAfter)
	}
	if q.PostedOn != nil {
		day := q.PostedOn.Truncate(24 * time.Hour)
		add(s.cols.postedAt+" >= $%d", day)
		add(s.cols.postedAt+" < $%d", day.Add(24*time.Hour))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var _ Source = (*PGSource)(nil)
