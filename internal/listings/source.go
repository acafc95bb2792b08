package listings

import (
	"context"
	"errors"
)

// ErrInvalidSort is returned when the sort key is not in the allowlist.
var ErrInvalidSort = errors.New("invalid sort key")

// Source searches one backing table of job listings.
type Source interface {
	Search(ctx context.Context, q Query) (Page, error)
	GetByID(ctx context.Context, id string) (Listing, bool, error)
}
