package analyses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobsearch-backend/internal/documents"
	"jobsearch-backend/internal/extract"
	"jobsearch-backend/internal/llm"
	"jobsearch-backend/internal/shared/server/middleware"
	"jobsearch-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/analyze", h.analyze)
	rg.GET("/documents/:id/analysis", h.get)
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	rec, cached, err := h.Svc.GetOrCreate(c.Request.Context(), userID, documentID)
	if err != nil {
		respondAnalysisError(c, err)
		return
	}
	respond.OK(c, toResponse(rec, cached))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	rec, err := h.Svc.GetRecord(c.Request.Context(), userID, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no analysis for this document", nil)
			return
		}
		respondAnalysisError(c, err)
		return
	}
	respond.OK(c, toResponse(rec, true))
}

func respondAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, documents.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, documents.ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "document belongs to another user", nil)
	case errors.Is(err, llm.ErrInvalidInput):
		respond.Error(c, http.StatusUnprocessableEntity, "TEXT_TOO_SHORT", "resume text is too short to analyze", nil)
	case errors.Is(err, extract.ErrUnsupportedType), errors.Is(err, extract.ErrExtractionFailed):
		respond.Error(c, http.StatusUnprocessableEntity, "EXTRACTION_FAILED", "could not extract text from the document", nil)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "NOT_CONFIGURED", "analysis provider is not configured", nil)
	case llm.IsRetryable(err):
		respond.Error(c, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "analysis provider is temporarily unavailable, try again", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
	}
}
