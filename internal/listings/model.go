package listings

import "time"

// Listing is one job posting, regardless of which table it came from.
type Listing struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	EmploymentType  string    `json:"employmentType"`
	WorkArrangement string    `json:"workArrangement"`
	Platform        string    `json:"platform"`
	MatchScore      float64   `json:"matchScore"`
	URL             string    `json:"url"`
	PostedAt        time.Time `json:"postedAt"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Query captures search, filter, sort and pagination parameters.
type Query struct {
	Keyword         string
	Location        string
	Company         string
	EmploymentType  string
	WorkArrangement string
	Platform        string
	MinScore        float64
	PostedAfter     *time.Time
	PostedOn        *time.Time
	SortBy          string
	SortDesc        bool
	Page            int
	Limit           int
}

// normalized clamps pagination into valid ranges.
func (q Query) normalized() Query {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.SortBy == "" {
		q.SortBy = "postedAt"
		q.SortDesc = true
	}
	return q
}

// Page is the paginated response envelope.
type Page struct {
	Data       []Listing `json:"data"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
