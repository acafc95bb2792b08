package listings

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobsearch-backend/internal/shared/server/respond"
)

// Handler serves the two listing endpoints, one per source.
type Handler struct {
	ETL     Source
	Curated Source
}

// NewHandler constructs a Handler.
func NewHandler(etl, curated Source) *Handler {
	return &Handler{ETL: etl, Curated: curated}
}

// RegisterRoutes attaches listing routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.search(h.ETL))
	rg.GET("/jobs/:id", h.get(h.ETL))
	rg.GET("/curated-jobs", h.search(h.Curated))
	rg.GET("/curated-jobs/:id", h.get(h.Curated))
}

func (h *Handler) search(src Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := queryFromRequest(c)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}

		page, err := src.Search(c.Request.Context(), q)
		if err != nil {
			if errors.Is(err, ErrInvalidSort) {
				respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to search listings", nil)
			return
		}
		respond.OK(c, page)
	}
}

func (h *Handler) get(src Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		listing, found, err := src.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch listing", nil)
			return
		}
		if !found {
			respond.Error(c, http.StatusNotFound, "not_found", "listing not found", nil)
			return
		}
		respond.OK(c, listing)
	}
}

func queryFromRequest(c *gin.Context) (Query, error) {
	q := Query{
		Keyword:         c.Query("q"),
		Location:        c.Query("location"),
		Company:         c.Query("company"),
		EmploymentType:  c.Query("employmentType"),
		WorkArrangement: c.Query("workArrangement"),
		Platform:        c.Query("platform"),
		SortBy:          c.DefaultQuery("sortBy", "postedAt"),
	}

	order := strings.ToLower(c.DefaultQuery("order", "desc"))
	switch order {
	case "desc":
		q.SortDesc = true
	case "asc":
		q.SortDesc = false
	default:
		return Query{}, errors.New("order must be asc or desc")
	}

	if v := c.Query("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return Query{}, errors.New("page must be an integer")
		}
		q.Page = parsed
	}
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return Query{}, errors.New("limit must be an integer")
		}
		q.Limit = parsed
	}
	if v := c.Query("minScore"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Query{}, errors.New("minScore must be a number")
		}
		q.MinScore = parsed
	}
	if v := c.Query("postedAfter"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return Query{}, errors.New("postedAfter must be YYYY-MM-DD")
		}
		q.PostedAfter = &parsed
	}
	if v := c.Query("postedOn"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return Query{}, errors.New("postedOn must be YYYY-MM-DD")
		}
		q.PostedOn = &parsed
	}

	return q, nil
}
