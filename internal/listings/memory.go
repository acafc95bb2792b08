package listings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemorySource is an in-memory Source for tests and DB-less runs.
type MemorySource struct {
	mu    sync.RWMutex
	items []Listing
}

// NewMemorySource constructs a MemorySource with the given listings.
func NewMemorySource(items ...Listing) *MemorySource {
	return &MemorySource{items: items}
}

// Add appends listings.
func (s *MemorySource) Add(items ...Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Search filters, sorts and paginates in memory.
func (s *MemorySource) Search(ctx context.Context, q Query) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	q = q.normalized()

	s.mu.RLock()
	matched := make([]Listing, 0, len(s.items))
	for _, l := range s.items {
		if matches(l, q) {
			matched = append(matched, l)
		}
	}
	s.mu.RUnlock()

	if err := sortListings(matched, q.SortBy, q.SortDesc); err != nil {
		return Page{}, err
	}

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	return Page{
		Data:       matched[start:end],
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages(total, q.Limit),
	}, nil
}

// GetByID fetches a single listing.
func (s *MemorySource) GetByID(ctx context.Context, id string) (Listing, bool, error) {
	if err := ctx.Err(); err != nil {
		return Listing{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.items {
		if l.ID == id {
			return l, true, nil
		}
	}
	return Listing{}, false, nil
}

func matches(l Listing, q Query) bool {
	if kw := strings.ToLower(strings.TrimSpace(q.Keyword)); kw != "" {
		if !strings.Contains(strings.ToLower(l.Title), kw) &&
			!strings.Contains(strings.ToLower(l.Company), kw) &&
			!strings.Contains(strings.ToLower(l.Description), kw) {
			return false
		}
	}
	if v := strings.TrimSpace(q.Location); v != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(v)) {
		return false
	}
	if v := strings.TrimSpace(q.Company); v != "" && !strings.Contains(strings.ToLower(l.Company), strings.ToLower(v)) {
		return false
	}
	if v := strings.TrimSpace(q.EmploymentType); v != "" && l.EmploymentType != v {
		return false
	}
	if v := strings.TrimSpace(q.WorkArrangement); v != "" && l.WorkArrangement != v {
		return false
	}
	if v := strings.TrimSpace(q.Platform); v != "" && l.Platform != v {
		return false
	}
	if q.MinScore > 0 && l.MatchScore < q.MinScore {
		return false
	}
	if q.PostedAfter != nil && l.PostedAt.Before(*q.PostedAfter) {
		return false
	}
	if q.PostedOn != nil {
		day := q.PostedOn.Truncate(24 * time.Hour)
		if l.PostedAt.Before(day) || !l.PostedAt.Before(day.Add(24*time.Hour)) {
			return false
		}
	}
	return true
}

func sortListings(items []Listing, sortBy string, desc bool) error {
	var less func(a, b Listing) bool
	switch sortBy {
	case "postedAt":
		less = func(a, b Listing) bool { return a.PostedAt.Before(b.PostedAt) }
	case "matchScore":
		less = func(a, b Listing) bool { return a.MatchScore < b.MatchScore }
	case "title":
		less = func(a, b Listing) bool { return a.Title < b.Title }
	case "company":
		less = func(a, b Listing) bool { return a.Company < b.Company }
	default:
		return fmt.Errorf("%w: %s", ErrInvalidSort, sortBy)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
	return nil
}

var _ Source = (*MemorySource)(nil)
