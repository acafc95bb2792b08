package documents

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobsearch-backend/internal/shared/server/middleware"
	"jobsearch-backend/internal/shared/server/respond"
)

// AnalysisProvider looks up the stored analysis for a document, if one exists.
// Implemented by the analyses service; the indirection avoids a package cycle.
type AnalysisProvider interface {
	AnalysisForDocument(ctx context.Context, userId, documentID string) (payload any, found bool, err error)
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc      *Service
	Analyses AnalysisProvider
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, analyses AnalysisProvider) *Handler {
	return &Handler{Svc: svc, Analyses: analyses}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	// Headroom over the cap covers multipart framing so a file at exactly
	// the limit still reaches validation.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "NO_FILE", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "NO_FILE", "unable to read file", nil)
		return
	}
	defer file.Close()

	declaredMime := fileHeader.Header.Get("Content-Type")
	doc, err := h.Svc.Upload(c.Request.Context(), userID, fileHeader.Filename, declaredMime, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the 5MB limit", nil)
		case errors.Is(err, ErrUnsupportedFileType):
			respond.Error(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE", "only PDF, DOC, DOCX and plain text files are accepted", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"documentId": doc.ID,
		"fileName":   doc.FileName,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	doc, err := h.Svc.GetOwned(c.Request.Context(), userID, documentID)
	if err != nil {
		respondLookupError(c, err)
		return
	}

	resp := gin.H{
		"metadata":    toResponse(doc),
		"hasAnalysis": false,
	}
	if h.Analyses != nil {
		payload, found, err := h.Analyses.AnalysisForDocument(c.Request.Context(), userID, documentID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
			return
		}
		if found {
			resp["hasAnalysis"] = true
			resp["analysis"] = payload
		}
	}

	respond.OK(c, resp)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	docs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		}
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), userID, documentID); err != nil {
		respondLookupError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": true})
}

func respondLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "document belongs to another user", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "document operation failed", nil)
	}
}
